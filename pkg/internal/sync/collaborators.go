package sync

import (
	"context"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

// Identity is the local account the engine synchronizes for.
type Identity struct {
	ID       string
	Username string
}

// Transport is the outbound half of the event source.
type Transport interface {
	Send(ev models.Event) error
}

// Fetcher loads typed lists from the remote service. Implementations own
// pagination and HTTP/stream semantics; the engine only consumes results.
type Fetcher interface {
	ListChannels(ctx context.Context, serverID string) ([]models.Channel, error)
	ListMembers(ctx context.Context, serverID string) ([]models.Member, error)
	ListMessages(ctx context.Context, channelID string, cursor *string) (models.ChannelSnapshot, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
}

// KeyExchange is the opaque E2EE collaborator. The engine holds no crypto
// state itself; key material and primitives live behind this interface.
type KeyExchange interface {
	Initialize()
	GetOrDeriveKey(conversationID, counterpartID string) ([]byte, error)
	Decrypt(ciphertext, key []byte) (string, error)
	ShareKeyWith(serverID, userID string)
	HandleKeyShared(payload models.KeySharedPayload)
	HandleKeyRequested(payload models.KeyRequestedPayload)
}

// Notifier raises best-effort desktop notifications and sounds.
type Notifier interface {
	ShouldNotify(channelID, senderID, content, parentID, selfUsername string) bool
	PlaySound()
	ShowDesktopNotification(sender, text string)
}

// Store persists low-stakes bookkeeping (message archive, visited servers).
// Failures are logged by implementations and never affect correctness.
type Store interface {
	ArchiveMessage(msg models.Message)
	TouchServer(serverID string)
}

// View is the reduced state republished to secondary UI surfaces.
type View struct {
	Messages        []models.Message `json:"messages"`
	ActiveChannelID string           `json:"active_channel_id"`
	ChannelName     string           `json:"channel_name"`
}

// Publisher pushes views to whatever secondary surfaces are listening.
type Publisher interface {
	Publish(view View)
}

// Deps bundles the reducer's collaborators. Any nil member degrades to a
// no-op so partial wirings (tests, headless runs) stay safe.
type Deps struct {
	Transport Transport
	Fetcher   Fetcher
	Keys      KeyExchange
	Notifier  Notifier
	Store     Store
	Publisher Publisher
}
