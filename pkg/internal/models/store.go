package models

import (
	"time"

	"gorm.io/datatypes"
)

// Local persistence records. These never leave the device; the server keeps
// its own authoritative history.

type Preference struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrolledServer tracks every server this client has joined, ordered in the
// UI by last visit.
type EnrolledServer struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name"`
	LastVisitedAt time.Time `json:"last_visited_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// ArchivedMessage is a best-effort offline copy of a message as it crossed
// the wire, kept for a bounded retention window.
type ArchivedMessage struct {
	ID         string            `json:"id" gorm:"primaryKey"`
	ChannelID  string            `json:"channel_id" gorm:"index"`
	SenderID   string            `json:"sender_id"`
	Body       datatypes.JSONMap `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
	ArchivedAt time.Time         `json:"archived_at"`
}
