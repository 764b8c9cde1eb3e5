package models

type PresenceStatus = string

const (
	StatusOnline    = PresenceStatus("online")
	StatusIdle      = PresenceStatus("idle")
	StatusDnd       = PresenceStatus("dnd")
	StatusInvisible = PresenceStatus("invisible")
)

type Presence struct {
	Online bool           `json:"online"`
	Status PresenceStatus `json:"status"`
}

// Activity is a per-user rich presence record, e.g. a game or media player.
type Activity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
