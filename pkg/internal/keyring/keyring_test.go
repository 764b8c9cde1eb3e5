package keyring

import (
	"bytes"
	"crypto/rand"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/spf13/viper"
	"golang.org/x/crypto/chacha20poly1305"
)

type sendRecorder struct {
	sent []models.Event
}

func (s *sendRecorder) Send(ev models.Event) error {
	s.sent = append(s.sent, ev)
	return nil
}

func newTestRing(t *testing.T) (*Ring, *sendRecorder) {
	t.Helper()
	viper.Set("keyring.secret", "test-secret")
	t.Cleanup(func() { viper.Set("keyring.secret", "") })
	rec := &sendRecorder{}
	ring := New(rec)
	ring.Initialize()
	return ring, rec
}

func TestDerivedKeysAreStablePerConversation(t *testing.T) {
	ring, _ := newTestRing(t)

	first, err := ring.GetOrDeriveKey("conv-1", "u-2")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := ring.GetOrDeriveKey("conv-1", "u-2")
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	other, err := ring.GetOrDeriveKey("conv-2", "u-2")
	if err != nil {
		t.Fatalf("derive other: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("key for the same conversation must be stable")
	}
	if bytes.Equal(first, other) {
		t.Fatalf("distinct conversations must not share a key")
	}
}

func TestUninitializedRingRefusesToDerive(t *testing.T) {
	ring := New(&sendRecorder{})
	if _, err := ring.GetOrDeriveKey("conv-1", "u-2"); err == nil {
		t.Fatalf("derive without a root secret must fail")
	}
}

func TestDecryptRoundTrip(t *testing.T) {
	ring, _ := newTestRing(t)
	key, _ := ring.GetOrDeriveKey("conv-1", "u-2")

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		t.Fatalf("aead: %v", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("nonce: %v", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte("attack at dawn"), nil)

	plain, err := ring.Decrypt(sealed, key)
	if err != nil || plain != "attack at dawn" {
		t.Fatalf("decrypt = %q, %v", plain, err)
	}
}

func TestDecryptRejectsTruncatedCiphertext(t *testing.T) {
	ring, _ := newTestRing(t)
	key, _ := ring.GetOrDeriveKey("conv-1", "u-2")

	if _, err := ring.Decrypt([]byte("short"), key); err == nil {
		t.Fatalf("truncated ciphertext must be rejected")
	}
}

func TestSharedBundleReplacesDerivedKey(t *testing.T) {
	ring, _ := newTestRing(t)
	derived, _ := ring.GetOrDeriveKey("conv-1", "u-2")

	pushed := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(pushed); err != nil {
		t.Fatalf("rand: %v", err)
	}
	bundle, _ := jsoniter.Marshal(keyBundle{Key: pushed})
	ring.HandleKeyShared(models.KeySharedPayload{ConversationID: "conv-1", Bundle: bundle})

	current, _ := ring.GetOrDeriveKey("conv-1", "u-2")
	if bytes.Equal(current, derived) || !bytes.Equal(current, pushed) {
		t.Fatalf("shared key must replace the derived one")
	}
}

func TestWrongSizeBundleIsDropped(t *testing.T) {
	ring, _ := newTestRing(t)
	derived, _ := ring.GetOrDeriveKey("conv-1", "u-2")

	bundle, _ := jsoniter.Marshal(keyBundle{Key: []byte("far too short")})
	ring.HandleKeyShared(models.KeySharedPayload{ConversationID: "conv-1", Bundle: bundle})

	current, _ := ring.GetOrDeriveKey("conv-1", "u-2")
	if !bytes.Equal(current, derived) {
		t.Fatalf("a malformed bundle must not disturb the ring")
	}
}

func TestKeyRequestTriggersShare(t *testing.T) {
	ring, rec := newTestRing(t)

	ring.HandleKeyRequested(models.KeyRequestedPayload{ConversationID: "conv-1", RequesterID: "u-2"})

	if len(rec.sent) != 1 || rec.sent[0].Type != models.CommandShareKey {
		t.Fatalf("key request must produce one share command, got %#v", rec.sent)
	}
}
