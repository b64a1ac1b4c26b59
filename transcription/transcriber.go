package transcription

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const whisperURL = "https://api.openai.com/v1/audio/transcriptions"

// Transcriber convierte mensajes de voz en texto usando Whisper
type Transcriber struct {
	apiKey string
	client *http.Client
}

func NewTranscriber(apiKey string) *Transcriber {
	return &Transcriber{
		apiKey: apiKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// extension deduce la extensión del archivo a partir del MIME type que
// manda WhatsApp (típicamente audio/ogg; codecs=opus)
func extension(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "mp3"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return "m4a"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	default:
		return "ogg"
	}
}

// Transcribe manda el audio a la API y devuelve el texto en español
func (t *Transcriber) Transcribe(audio []byte, mimeType string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("falta la API key de OpenAI")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+extension(mimeType))
	if err != nil {
		return "", fmt.Errorf("error al armar el formulario: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("error al escribir el audio: %v", err)
	}

	writer.WriteField("model", "whisper-1")
	writer.WriteField("language", "es")
	writer.WriteField("response_format", "text")

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error al cerrar el formulario: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, whisperURL, &body)
	if err != nil {
		return "", fmt.Errorf("error al crear la request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error al llamar a la API: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error al leer la respuesta: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("la API respondió %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return strings.TrimSpace(string(data)), nil
}
