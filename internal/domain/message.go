package domain

import "time"

// Event names delivered over the messaging socket.
const (
	EventMessageSent     = "message:sent"
	EventMessageReceived = "message:received"
	EventMessageStatus   = "message:status"
)

// MessageDirection tells inbound from outbound messages.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

var statusRank = map[MessageStatus]int{
	StatusPending:   1,
	StatusSent:      2,
	StatusDelivered: 3,
	StatusRead:      4,
	StatusFailed:    5,
}

// Rank orders statuses so an update never moves a message backwards.
func (s MessageStatus) Rank() int {
	return statusRank[s]
}

// Message is one entry of a conversation thread. AltID carries the client-side id of an
// optimistically inserted message until the server echo confirms it.
type Message struct {
	Timestamp time.Time        `json:"timestamp"`
	ID        string           `json:"id"`
	AltID     string           `json:"alt_id,omitempty"`
	Phone     string           `json:"phone"`
	Direction MessageDirection `json:"direction"`
	Status    MessageStatus    `json:"status"`
	Body      string           `json:"body,omitempty"`
}

// MessageEvent is a named socket event carrying a message payload.
type MessageEvent struct {
	Name    string  `json:"event"`
	Message Message `json:"data"`
}
