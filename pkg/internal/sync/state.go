package sync

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/policy"
	"github.com/samber/lo"
)

// State is the engine's primary mutable state. It is owned by a single
// writer (the engine loop); nothing here is locked.
type State struct {
	ActiveServerID  string
	ActiveChannelID string
	ActiveDMID      string
	VoiceChannelID  string
	Focused         bool

	// Live view of the active server and channel.
	Channels  []models.Channel
	Members   []models.Member
	Messages  []models.Message
	Reactions map[string][]models.ReactionGroup
	Cursor    *string
	HasMore   bool

	// Last search-result list; edits and deletions patch it too.
	SearchResults []models.Message

	Conversations []models.Conversation

	Unread   map[string]struct{}
	Mentions map[string]int

	Presence   map[string]models.Presence
	Activities map[string]models.Activity
	Typing     map[string]map[string]struct{}
	Prompts    []models.Prompt

	Mutes policy.MuteConfig

	SelfActivity *models.Activity

	// ViewVersion increments when a published container mutates in place,
	// e.g. an edit patching a live message. Appends and removals already
	// move the shallow view fingerprint; in-place patches do not.
	ViewVersion int
}

func newState() State {
	return State{
		Reactions:  make(map[string][]models.ReactionGroup),
		Unread:     make(map[string]struct{}),
		Mentions:   make(map[string]int),
		Presence:   make(map[string]models.Presence),
		Activities: make(map[string]models.Activity),
		Typing:     make(map[string]map[string]struct{}),
	}
}

// parentOf resolves a channel's owning category, when known locally.
func (s *State) parentOf(channelID string) string {
	channel, ok := lo.Find(s.Channels, func(c models.Channel) bool { return c.ID == channelID })
	if !ok || channel.ParentID == nil {
		return ""
	}
	return *channel.ParentID
}

func (s *State) channelName(channelID string) string {
	channel, ok := lo.Find(s.Channels, func(c models.Channel) bool { return c.ID == channelID })
	if !ok {
		return ""
	}
	return channel.Name
}

func (s *State) clearLiveChannel() {
	s.Messages = nil
	s.Reactions = make(map[string][]models.ReactionGroup)
	s.Cursor = nil
	s.HasMore = false
}

func (s *State) loadChannelSnapshot(snap models.ChannelSnapshot) {
	s.Messages = snap.Messages
	s.Reactions = snap.Reactions
	if s.Reactions == nil {
		s.Reactions = make(map[string][]models.ReactionGroup)
	}
	s.Cursor = snap.Cursor
	s.HasMore = snap.HasMore
}

func (s *State) liveChannelSnapshot() models.ChannelSnapshot {
	return models.ChannelSnapshot{
		Messages:  s.Messages,
		Reactions: s.Reactions,
		Cursor:    s.Cursor,
		HasMore:   s.HasMore,
	}
}
