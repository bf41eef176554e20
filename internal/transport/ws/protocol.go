package ws

import "encoding/json"

const (
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendPayload struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

// receiveFrame builds the outbound frame; message is forwarded untouched.
func receiveFrame(message json.RawMessage) ([]byte, error) {
	if len(message) == 0 {
		message = json.RawMessage("null")
	}
	return json.Marshal(Frame{Event: EventReceiveMessage, Data: message})
}
