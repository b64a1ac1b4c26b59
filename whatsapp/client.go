package whatsapp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	_ "github.com/mattn/go-sqlite3"
)

// MessageHandler procesa los mensajes entrantes ya desempaquetados
type MessageHandler interface {
	HandleMessage(chatID, pushName, text string)
	HandleVoice(chatID, pushName string, audio []byte, mimeType string)
}

// Dedup evita procesar dos veces el mismo mensaje tras un reinicio
type Dedup interface {
	WasProcessed(messageID string) bool
	MarkProcessed(messageID string) error
}

// Client envuelve el cliente de whatsmeow con lo que necesita el bot
type Client struct {
	client  *whatsmeow.Client
	handler MessageHandler
	dedup   Dedup
}

// NewClient crea el cliente usando un SQLite local para la sesión
func NewClient(sessionPath string) (*Client, error) {
	logger := waLog.Stdout("WhatsApp", "INFO", true)

	container, err := sqlstore.New("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", sessionPath), logger)
	if err != nil {
		return nil, fmt.Errorf("error al abrir la sesión: %v", err)
	}

	deviceStore, err := container.GetFirstDevice()
	if err != nil {
		return nil, fmt.Errorf("error al obtener el dispositivo: %v", err)
	}

	return &Client{
		client: whatsmeow.NewClient(deviceStore, logger),
	}, nil
}

// SetHandler registra el handler de mensajes y la caché de deduplicación
func (c *Client) SetHandler(handler MessageHandler, dedup Dedup) {
	c.handler = handler
	c.dedup = dedup
	c.client.AddEventHandler(c.onEvent)
}

func (c *Client) onEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		c.onMessage(v)
	case *events.Connected:
		log.Println("✅ Cliente de WhatsApp conectado")
	case *events.LoggedOut:
		log.Println("⚠️ Sesión de WhatsApp cerrada, hay que volver a escanear el QR")
	}
}

func (c *Client) onMessage(v *events.Message) {
	if c.handler == nil || v.Info.IsFromMe {
		return
	}

	// Solo chats directos, el bot no participa en grupos
	if v.Info.IsGroup {
		return
	}

	messageID := v.Info.ID
	if c.dedup != nil && c.dedup.WasProcessed(messageID) {
		return
	}

	chatID := v.Info.Chat.String()
	pushName := v.Info.PushName

	if audioMsg := v.Message.GetAudioMessage(); audioMsg != nil {
		data, err := c.client.Download(audioMsg)
		if err != nil {
			log.Printf("❌ Error al descargar el audio de %s: %v", chatID, err)
			return
		}
		c.markProcessed(messageID)
		c.handler.HandleVoice(chatID, pushName, data, audioMsg.GetMimetype())
		return
	}

	text := v.Message.GetConversation()
	if text == "" && v.Message.GetExtendedTextMessage() != nil {
		text = v.Message.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		return
	}

	c.markProcessed(messageID)
	c.handler.HandleMessage(chatID, pushName, text)
}

func (c *Client) markProcessed(messageID string) {
	if c.dedup == nil {
		return
	}
	if err := c.dedup.MarkProcessed(messageID); err != nil {
		log.Printf("⚠️ No se pudo registrar el mensaje %s como procesado: %v", messageID, err)
	}
}

// Connect conecta el cliente; si no hay sesión muestra el QR en la terminal
func (c *Client) Connect() error {
	if c.client.Store.ID == nil {
		qrChan, err := c.client.GetQRChannel(context.Background())
		if err != nil {
			return fmt.Errorf("error al obtener el canal del QR: %v", err)
		}
		if err := c.client.Connect(); err != nil {
			return fmt.Errorf("error al conectar: %v", err)
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				log.Println("📱 Escaneá este código QR con WhatsApp")
			} else {
				log.Println("Evento QR:", evt.Event)
			}
		}
		return nil
	}

	log.Println("🔑 Sesión existente para", c.client.Store.ID)
	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("error al conectar: %v", err)
	}
	return nil
}

// Disconnect corta la conexión
func (c *Client) Disconnect() {
	c.client.Disconnect()
}

// parseJID arma el JID de destino a partir del chat ID guardado
func parseJID(chatID string) (types.JID, error) {
	if !strings.ContainsRune(chatID, '@') {
		return types.NewJID(chatID, types.DefaultUserServer), nil
	}
	return types.ParseJID(chatID)
}

// SendMessage manda un mensaje de texto al chat
func (c *Client) SendMessage(chatID, text string) error {
	jid, err := parseJID(chatID)
	if err != nil {
		return fmt.Errorf("chat ID inválido %s: %v", chatID, err)
	}

	msg := &waProto.Message{
		Conversation: proto.String(text),
	}
	if _, err := c.client.SendMessage(context.Background(), jid, msg); err != nil {
		return fmt.Errorf("error al enviar el mensaje: %v", err)
	}
	return nil
}

// SendDocument sube un archivo y lo manda como documento
func (c *Client) SendDocument(chatID, filePath, caption string) error {
	jid, err := parseJID(chatID)
	if err != nil {
		return fmt.Errorf("chat ID inválido %s: %v", chatID, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error al leer %s: %v", filePath, err)
	}

	uploaded, err := c.client.Upload(context.Background(), data, whatsmeow.MediaDocument)
	if err != nil {
		return fmt.Errorf("error al subir el documento: %v", err)
	}

	mimeType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		mimeType = "application/pdf"
	case ".txt":
		mimeType = "text/plain"
	}

	docMsg := &waProto.DocumentMessage{
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		MediaKey:      uploaded.MediaKey,
		Mimetype:      proto.String(mimeType),
		FileEncSHA256: uploaded.FileEncSHA256,
		FileSHA256:    uploaded.FileSHA256,
		FileLength:    proto.Uint64(uploaded.FileLength),
		FileName:      proto.String(filepath.Base(filePath)),
		Caption:       proto.String(caption),
	}

	msg := &waProto.Message{DocumentMessage: docMsg}
	if _, err := c.client.SendMessage(context.Background(), jid, msg); err != nil {
		return fmt.Errorf("error al enviar el documento: %v", err)
	}
	return nil
}
