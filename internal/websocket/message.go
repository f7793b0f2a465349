package websocket

import (
	"time"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	"github.com/google/uuid"
)

const MessageTypeCoordinates = "coordinates"

type Message struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type"`
	Role      role.Role     `json:"role"`
	Record    *store.Record `json:"record,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

func NewCoordinatesMessage(r role.Role, rec store.Record) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeCoordinates,
		Role:      r,
		Record:    &rec,
		Timestamp: time.Now().Unix(),
	}
}
