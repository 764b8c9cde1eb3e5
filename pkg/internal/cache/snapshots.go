package cache

import (
	"sync"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

// ChannelSnapshotCache keeps the last-known state per channel so navigating
// back repaints instantly. Save copies the state; Restore is O(1) and never
// touches the network. Entries live for the whole process.
type ChannelSnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]models.ChannelSnapshot
}

func NewChannelSnapshotCache() *ChannelSnapshotCache {
	return &ChannelSnapshotCache{entries: make(map[string]models.ChannelSnapshot)}
}

func (c *ChannelSnapshotCache) Save(channelID string, snap models.ChannelSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[channelID] = snap.Clone()
}

func (c *ChannelSnapshotCache) Restore(channelID string) (models.ChannelSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[channelID]
	if !ok {
		return models.ChannelSnapshot{}, false
	}
	return snap.Clone(), true
}

// Update applies fn to an existing snapshot in place; absent ids are left
// absent (live events only append to channels the user has visited).
func (c *ChannelSnapshotCache) Update(channelID string, fn func(*models.ChannelSnapshot)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[channelID]
	if !ok {
		return false
	}
	fn(&snap)
	c.entries[channelID] = snap
	return true
}

// ServerSnapshotCache is the same mechanism at server granularity.
type ServerSnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]models.ServerSnapshot
}

func NewServerSnapshotCache() *ServerSnapshotCache {
	return &ServerSnapshotCache{entries: make(map[string]models.ServerSnapshot)}
}

func (c *ServerSnapshotCache) Save(serverID string, snap models.ServerSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[serverID] = snap.Clone()
}

func (c *ServerSnapshotCache) Restore(serverID string) (models.ServerSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[serverID]
	if !ok {
		return models.ServerSnapshot{}, false
	}
	return snap.Clone(), true
}

func (c *ServerSnapshotCache) Update(serverID string, fn func(*models.ServerSnapshot)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[serverID]
	if !ok {
		return false
	}
	fn(&snap)
	c.entries[serverID] = snap
	return true
}
