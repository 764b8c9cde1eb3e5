package models

import "time"

type Member struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Nick       string    `json:"nick,omitempty"`
	Avatar     *string   `json:"avatar,omitempty"`
	PowerLevel int       `json:"power_level"`
	JoinedAt   time.Time `json:"joined_at"`
}
