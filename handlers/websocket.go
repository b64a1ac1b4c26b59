package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"recordatorio-bot/models"
)

var (
	wsClients    = make(map[*websocket.Conn]bool)
	wsClientsMux sync.Mutex

	wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Permitir todos los orígenes en desarrollo
		},
	}
)

// BroadcastToClients manda un mensaje a todos los clientes WebSocket conectados
func BroadcastToClients(messageType string, payload interface{}) {
	wsClientsMux.Lock()
	defer wsClientsMux.Unlock()

	if len(wsClients) == 0 {
		return
	}

	wsMessage := models.WSMessage{
		Type:    messageType,
		Payload: payload,
	}

	for client := range wsClients {
		if err := client.WriteJSON(wsMessage); err != nil {
			client.Close()
			delete(wsClients, client)
		}
	}
}

// HandleWebSocket maneja las conexiones WebSocket entrantes
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Could not upgrade connection", http.StatusInternalServerError)
		return
	}

	wsClientsMux.Lock()
	wsClients[conn] = true
	wsClientsMux.Unlock()

	defer func() {
		wsClientsMux.Lock()
		delete(wsClients, conn)
		wsClientsMux.Unlock()
		conn.Close()
	}()

	// Mantiene la conexión leyendo hasta que el cliente corte
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
