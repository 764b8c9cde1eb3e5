package models

import "time"

type PromptKind = string

const (
	PromptKnock  = PromptKind("knock")
	PromptInvite = PromptKind("invite")
)

// Prompt is an ephemeral, timestamped banner shown until it is dismissed
// or self-expires.
type Prompt struct {
	ID        string     `json:"id"`
	Kind      PromptKind `json:"kind"`
	ChannelID string     `json:"channel_id"`
	SenderID  string     `json:"sender_id"`
	At        time.Time  `json:"at"`
}
