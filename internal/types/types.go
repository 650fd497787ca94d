package types

import "encoding/json"

// ServerMessage is sent by the server to a single connection, never relayed.
type ServerMessage struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error,omitempty"`
}

func ErrorFrame(reason string) []byte {
	b, _ := json.Marshal(ServerMessage{Type: "error", Error: reason})
	return b
}
