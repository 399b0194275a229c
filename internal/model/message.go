package model

import "time"

// ChatMessage is the broadcast payload sent to every connection.
type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// ChatRecord is the persisted form of a chat message. CreatedAt is assigned
// by the repository on insert and orders the history replay.
type ChatRecord struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string    `json:"username" bson:"username"`
	Text      string    `json:"text" bson:"text"`
	Time      string    `json:"time" bson:"time"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// AdminState is the registry snapshot pushed to admin observers.
type AdminState struct {
	Pending []string `json:"pending"`
	Active  []string `json:"active"`
}
