package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventUserDataUpdated is the routing key of UserDataUpdatedMessage.
const EventUserDataUpdated = "user_data.updated"

// UserDataUpdatedMessage announces that a user's document was replaced. It
// carries no data; consumers read the document from the store.
type UserDataUpdatedMessage struct {
	Event     string    `json:"event"`
	UserID    string    `json:"userId"`
	UpdatedAt time.Time `json:"updatedAt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserDataUpdatedMessage(userID string, updatedAt time.Time) *UserDataUpdatedMessage {
	return &UserDataUpdatedMessage{
		Event:     EventUserDataUpdated,
		UserID:    userID,
		UpdatedAt: updatedAt,
		Timestamp: time.Now(),
	}
}

func (m *UserDataUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// UserDataUpdatedMessageFromJSON decodes a message and rejects ones without
// a user id.
func UserDataUpdatedMessageFromJSON(data []byte) (*UserDataUpdatedMessage, error) {
	var msg UserDataUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, errors.New("message without user id")
	}
	return &msg, nil
}
