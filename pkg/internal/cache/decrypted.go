package cache

import "sync"

// DecryptFailedPlaceholder is stored for a message whose key cannot be
// resolved or whose ciphertext fails to decrypt, so a single bad message
// never takes down the event loop.
const DecryptFailedPlaceholder = "[unable to decrypt]"

// DecryptedContentCache maps message id to plaintext. Entries are written
// once and live for the whole process, read by every view.
type DecryptedContentCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewDecryptedContentCache() *DecryptedContentCache {
	return &DecryptedContentCache{entries: make(map[string]string)}
}

// SeedOnce stores plaintext for a message unless one is already present.
// Reports whether the value was written.
func (c *DecryptedContentCache) SeedOnce(messageID, plaintext string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[messageID]; ok {
		return false
	}
	c.entries[messageID] = plaintext
	return true
}

func (c *DecryptedContentCache) Lookup(messageID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[messageID]
	return text, ok
}
