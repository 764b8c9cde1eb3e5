package policy

import (
	"time"

	"github.com/samber/lo"
)

// MuteEntry silences one target, optionally until ExpiresAt.
// A nil ExpiresAt mutes forever.
type MuteEntry struct {
	ID        string     `json:"id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (e MuteEntry) active(now time.Time) bool {
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

// MuteConfig holds five independently toggleable mute axes. Channel and
// category mutes suppress unread; the mention variants suppress only the
// mention counter; user mutes suppress everything from that sender.
type MuteConfig struct {
	Channels         []MuteEntry `json:"channels"`
	Categories       []MuteEntry `json:"categories"`
	ChannelMentions  []MuteEntry `json:"channel_mentions"`
	CategoryMentions []MuteEntry `json:"category_mentions"`
	Users            []MuteEntry `json:"users"`
}

func contains(entries []MuteEntry, id string, now time.Time) bool {
	return lo.ContainsBy(entries, func(e MuteEntry) bool {
		return e.ID == id && e.active(now)
	})
}

// upsert replaces an existing entry for the same id instead of appending a
// duplicate, so toggling the same mute twice leaves a single entry.
func upsert(entries []MuteEntry, entry MuteEntry) []MuteEntry {
	for i, e := range entries {
		if e.ID == entry.ID {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

func remove(entries []MuteEntry, id string) []MuteEntry {
	return lo.Reject(entries, func(e MuteEntry, _ int) bool { return e.ID == id })
}

func (c *MuteConfig) MuteChannel(id string, expiresAt *time.Time) {
	c.Channels = upsert(c.Channels, MuteEntry{ID: id, ExpiresAt: expiresAt})
}

func (c *MuteConfig) UnmuteChannel(id string) {
	c.Channels = remove(c.Channels, id)
}

func (c *MuteConfig) MuteCategory(id string, expiresAt *time.Time) {
	c.Categories = upsert(c.Categories, MuteEntry{ID: id, ExpiresAt: expiresAt})
}

func (c *MuteConfig) UnmuteCategory(id string) {
	c.Categories = remove(c.Categories, id)
}

func (c *MuteConfig) MuteChannelMentions(id string, expiresAt *time.Time) {
	c.ChannelMentions = upsert(c.ChannelMentions, MuteEntry{ID: id, ExpiresAt: expiresAt})
}

func (c *MuteConfig) UnmuteChannelMentions(id string) {
	c.ChannelMentions = remove(c.ChannelMentions, id)
}

func (c *MuteConfig) MuteCategoryMentions(id string, expiresAt *time.Time) {
	c.CategoryMentions = upsert(c.CategoryMentions, MuteEntry{ID: id, ExpiresAt: expiresAt})
}

func (c *MuteConfig) UnmuteCategoryMentions(id string) {
	c.CategoryMentions = remove(c.CategoryMentions, id)
}

func (c *MuteConfig) MuteUser(id string, expiresAt *time.Time) {
	c.Users = upsert(c.Users, MuteEntry{ID: id, ExpiresAt: expiresAt})
}

func (c *MuteConfig) UnmuteUser(id string) {
	c.Users = remove(c.Users, id)
}

func (c MuteConfig) IsChannelMuted(id string, now time.Time) bool {
	return contains(c.Channels, id, now)
}

func (c MuteConfig) IsCategoryMuted(id string, now time.Time) bool {
	return contains(c.Categories, id, now)
}

func (c MuteConfig) AreChannelMentionsMuted(id string, now time.Time) bool {
	return contains(c.ChannelMentions, id, now)
}

func (c MuteConfig) AreCategoryMentionsMuted(id string, now time.Time) bool {
	return contains(c.CategoryMentions, id, now)
}

func (c MuteConfig) IsUserMuted(id string, now time.Time) bool {
	return contains(c.Users, id, now)
}
