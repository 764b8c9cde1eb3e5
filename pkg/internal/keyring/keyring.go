package keyring

import (
	"crypto/sha256"
	"errors"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Sender is the outbound half of the gateway, as far as key exchange cares.
type Sender interface {
	Send(ev models.Event) error
}

// Ring holds the local key material. Conversation keys are derived from
// the account root secret on first use and replaced by shared keys when a
// counterpart pushes a bundle.
type Ring struct {
	transport Sender

	mu   sync.RWMutex
	root []byte
	keys map[string][]byte
}

type keyBundle struct {
	Key []byte `json:"key"`
}

func New(transport Sender) *Ring {
	return &Ring{
		transport: transport,
		keys:      make(map[string][]byte),
	}
}

// Initialize loads the account root secret. Without one every decryption
// falls back to the unreadable-message placeholder, which is survivable.
func (r *Ring) Initialize() {
	secret := viper.GetString("keyring.secret")
	if secret == "" {
		log.Warn().Msg("No keyring secret configured, encrypted history will be unreadable.")
		return
	}
	sum := sha256.Sum256([]byte(secret))
	r.mu.Lock()
	r.root = sum[:]
	r.mu.Unlock()
}

// GetOrDeriveKey returns the conversation key, deriving one from the root
// secret when nothing was shared yet.
func (r *Ring) GetOrDeriveKey(conversationID, counterpartID string) ([]byte, error) {
	r.mu.RLock()
	key, ok := r.keys[conversationID]
	root := r.root
	r.mu.RUnlock()
	if ok {
		return key, nil
	}
	if len(root) == 0 {
		return nil, errors.New("keyring is not initialized")
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, root, []byte(conversationID), []byte(counterpartID))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.keys[conversationID] = derived
	r.mu.Unlock()
	return derived, nil
}

// Decrypt opens a nonce-prefixed ChaCha20-Poly1305 sealed box.
func (r *Ring) Decrypt(ciphertext, key []byte) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", err
	}
	if len(ciphertext) < aead.NonceSize() {
		return "", errors.New("ciphertext is shorter than its nonce")
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// ShareKeyWith pushes our conversation key to a newly joined member so they
// can read history sent before they arrived.
func (r *Ring) ShareKeyWith(serverID, userID string) {
	key, err := r.GetOrDeriveKey(serverID, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Unable to share a conversation key.")
		return
	}
	bundle, _ := jsoniter.Marshal(keyBundle{Key: key})
	if err := r.transport.Send(models.NewEvent(models.CommandShareKey, models.KeySharedPayload{
		ConversationID: serverID,
		Bundle:         bundle,
	})); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Unable to push a key bundle.")
	}
}

// HandleKeyShared installs a key bundle pushed by a counterpart. A shared
// key always wins over a locally derived one.
func (r *Ring) HandleKeyShared(payload models.KeySharedPayload) {
	var bundle keyBundle
	if err := jsoniter.Unmarshal(payload.Bundle, &bundle); err != nil {
		log.Warn().Err(err).Str("conversation", payload.ConversationID).Msg("Dropped a malformed key bundle.")
		return
	}
	if len(bundle.Key) != chacha20poly1305.KeySize {
		log.Warn().Str("conversation", payload.ConversationID).Msg("Dropped a key bundle of the wrong size.")
		return
	}
	r.mu.Lock()
	r.keys[payload.ConversationID] = bundle.Key
	r.mu.Unlock()
}

// HandleKeyRequested answers a counterpart that cannot read the thread.
func (r *Ring) HandleKeyRequested(payload models.KeyRequestedPayload) {
	r.ShareKeyWith(payload.ConversationID, payload.RequesterID)
}
