package models

import "time"

const (
	AlgorithmPlain = "plain"
)

// Message is immutable once created, except for edits and soft deletion.
// It belongs to exactly one channel or exactly one direct conversation.
type Message struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id,omitempty"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`

	Ciphertext []byte `json:"ciphertext,omitempty"`
	// Content carries the cleartext when the gateway already has it,
	// e.g. the echo of a freshly self-sent message or a plain-algorithm
	// message. Otherwise it is empty and resolved via the decrypted cache.
	Content   string `json:"content,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`

	Attachments []string   `json:"attachments,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
}

// ReactionGroup aggregates every user that reacted to one message with
// one emoji. Groups with no users left are removed, never kept empty.
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
}
