package models

// WSMessage es el sobre de los mensajes enviados por WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
