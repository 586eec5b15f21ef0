package realtime

// Client to server message types.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Server to client message types.
const (
	MessageChange       = "change"
	MessageSubscribed   = "subscribed"
	MessageUnsubscribed = "unsubscribed"
	MessageError        = "error"
)

type ClientMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

type ServerMessage struct {
	Type    string       `json:"type"`
	Topic   string       `json:"topic,omitempty"`
	Event   *ChangeEvent `json:"event,omitempty"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}
