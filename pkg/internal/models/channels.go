package models

type ChannelType = string

const (
	ChannelTypeText     = ChannelType("text")
	ChannelTypeVoice    = ChannelType("voice")
	ChannelTypeCategory = ChannelType("category")
	ChannelTypeRoom     = ChannelType("room")
)

type Channel struct {
	ID       string      `json:"id"`
	ServerID string      `json:"server_id"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	// ParentID points to a category channel in the same server.
	// The server is authoritative; a dangling reference is tolerated as-is.
	ParentID *string `json:"parent_id,omitempty"`
	Position int     `json:"position"`
	IsLocked bool    `json:"is_locked"`
	Bitrate  int     `json:"bitrate,omitempty"`
}

// Conversation is a one-to-one direct message thread.
type Conversation struct {
	ID              string `json:"id"`
	CounterpartID   string `json:"counterpart_id"`
	CounterpartName string `json:"counterpart_name"`
}
