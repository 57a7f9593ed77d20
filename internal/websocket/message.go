package websocket

// Message defines the structure for websocket frames.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
