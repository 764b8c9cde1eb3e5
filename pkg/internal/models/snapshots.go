package models

// ChannelSnapshot is the last-known visible state of one channel, kept so
// re-entering the channel repaints instantly before the refetch resolves.
// The same shape doubles as one page of fetched message history.
type ChannelSnapshot struct {
	Messages  []Message                  `json:"messages"`
	Reactions map[string][]ReactionGroup `json:"reactions"`
	Cursor    *string                    `json:"cursor,omitempty"`
	HasMore   bool                       `json:"has_more"`
}

// ServerSnapshot is the same idea at server granularity.
type ServerSnapshot struct {
	Channels        []Channel `json:"channels"`
	Members         []Member  `json:"members"`
	ActiveChannelID string    `json:"active_channel_id"`
}

func (s ChannelSnapshot) Clone() ChannelSnapshot {
	out := ChannelSnapshot{
		Messages: make([]Message, len(s.Messages)),
		Cursor:   s.Cursor,
		HasMore:  s.HasMore,
	}
	copy(out.Messages, s.Messages)
	if s.Cursor != nil {
		cursor := *s.Cursor
		out.Cursor = &cursor
	}
	if s.Reactions != nil {
		out.Reactions = make(map[string][]ReactionGroup, len(s.Reactions))
		for id, groups := range s.Reactions {
			cloned := make([]ReactionGroup, len(groups))
			for i, group := range groups {
				users := make([]string, len(group.UserIDs))
				copy(users, group.UserIDs)
				cloned[i] = ReactionGroup{Emoji: group.Emoji, UserIDs: users}
			}
			out.Reactions[id] = cloned
		}
	}
	return out
}

func (s ServerSnapshot) Clone() ServerSnapshot {
	out := ServerSnapshot{
		Channels:        make([]Channel, len(s.Channels)),
		Members:         make([]Member, len(s.Members)),
		ActiveChannelID: s.ActiveChannelID,
	}
	copy(out.Channels, s.Channels)
	copy(out.Members, s.Members)
	return out
}
