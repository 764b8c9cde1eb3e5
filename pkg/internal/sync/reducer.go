package sync

import (
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/cache"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// Reducer applies one inbound event at a time to the local state. It is
// never re-entrant: the engine loop runs each synchronous portion to
// completion before the next event. Longer work (decryption, key lookup,
// refetches) goes through runAsync and re-enters via schedule, re-checking
// its preconditions because the state may have moved on.
type Reducer struct {
	self  Identity
	state State
	deps  Deps

	channelSnaps *cache.ChannelSnapshotCache
	serverSnaps  *cache.ServerSnapshotCache
	decrypted    *cache.DecryptedContentCache

	schedule func(fn func())
	runAsync func(fn func())
	after    func(d time.Duration, fn func())
	now      func() time.Time

	lastView viewIdentity
}

func NewReducer(self Identity, deps Deps, channelSnaps *cache.ChannelSnapshotCache, serverSnaps *cache.ServerSnapshotCache, decrypted *cache.DecryptedContentCache) *Reducer {
	r := &Reducer{
		self:         self,
		state:        newState(),
		deps:         deps,
		channelSnaps: channelSnaps,
		serverSnaps:  serverSnaps,
		decrypted:    decrypted,
		now:          time.Now,
	}
	r.schedule = func(fn func()) { fn() }
	r.runAsync = func(fn func()) { go fn() }
	r.after = func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() { r.schedule(fn) })
	}
	return r
}

// State exposes the current state for the engine loop and tests. Callers
// outside the loop must not retain it.
func (r *Reducer) State() *State {
	return &r.state
}

// Apply dispatches one inbound event. A handler panic is contained here so
// one malformed event can never halt delivery for every channel and server.
func (r *Reducer) Apply(ev models.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Any("panic", rec).Str("type", ev.Type).Msg("Recovered from a failing event handler.")
		}
	}()

	switch ev.Type {
	case models.EventMessage:
		var p models.MessagePayload
		if decode(ev, &p) {
			r.applyMessage(p.Message)
		}
	case models.EventMessageEdit:
		var p models.MessageEditPayload
		if decode(ev, &p) {
			r.applyMessageEdit(p)
		}
	case models.EventMessageDelete:
		var p models.MessageDeletePayload
		if decode(ev, &p) {
			r.applyMessageDelete(p)
		}
	case models.EventReactionAdd:
		var p models.ReactionPayload
		if decode(ev, &p) {
			r.applyReaction(p, true)
		}
	case models.EventReactionRemove:
		var p models.ReactionPayload
		if decode(ev, &p) {
			r.applyReaction(p, false)
		}
	case models.EventTyping:
		var p models.TypingPayload
		if decode(ev, &p) {
			r.applyTyping(p)
		}
	case models.EventPresence:
		var p models.PresencePayload
		if decode(ev, &p) {
			r.applyPresence(p)
		}
	case models.EventActivityUpdate:
		var p models.ActivityPayload
		if decode(ev, &p) {
			r.applyActivityUpdate(p)
		}
	case models.EventMemberJoined:
		var p models.MemberJoinedPayload
		if decode(ev, &p) {
			r.applyMemberJoined(p)
		}
	case models.EventMemberLeft:
		var p models.MemberLeftPayload
		if decode(ev, &p) {
			r.applyMemberLeft(p)
		}
	case models.EventMemberRoleUpdated:
		var p models.MemberRolePayload
		if decode(ev, &p) {
			r.applyMemberRoleUpdated(p)
		}
	case models.EventProfileUpdate:
		var p models.ProfileUpdatePayload
		if decode(ev, &p) {
			r.applyProfileUpdate(p)
		}
	case models.EventServerKeyShared:
		var p models.KeySharedPayload
		if decode(ev, &p) && r.deps.Keys != nil {
			r.runAsync(func() { r.deps.Keys.HandleKeyShared(p) })
		}
	case models.EventServerKeyRequest:
		var p models.KeyRequestedPayload
		if decode(ev, &p) && r.deps.Keys != nil {
			r.runAsync(func() { r.deps.Keys.HandleKeyRequested(p) })
		}
	case models.EventDirectMessage:
		var p models.DirectMessagePayload
		if decode(ev, &p) {
			r.applyDirectMessage(p)
		}
	case models.EventRoomCreated:
		var p models.RoomCreatedPayload
		if decode(ev, &p) {
			r.applyRoomCreated(p)
		}
	case models.EventRoomDeleted:
		var p models.RoomDeletedPayload
		if decode(ev, &p) {
			r.applyRoomDeleted(p)
		}
	case models.EventRoomLockToggled:
		var p models.RoomLockPayload
		if decode(ev, &p) {
			r.applyRoomLockToggled(p)
		}
	case models.EventRoomKnock:
		var p models.PromptPayload
		if decode(ev, &p) {
			r.applyPrompt(models.PromptKnock, p)
		}
	case models.EventRoomInvite:
		var p models.PromptPayload
		if decode(ev, &p) {
			r.applyPrompt(models.PromptInvite, p)
		}
	case models.EventSoundboardPlay:
		var p models.SoundboardPayload
		if decode(ev, &p) {
			r.applySoundboardPlay(p)
		}
	default:
		log.Debug().Str("type", ev.Type).Msg("Dropped event of unknown type.")
	}
}

func decode(ev models.Event, out any) bool {
	if err := ev.Decode(out); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("Unable to decode event payload.")
		return false
	}
	return true
}

func (r *Reducer) send(ev models.Event) {
	if r.deps.Transport == nil {
		return
	}
	if err := r.deps.Transport.Send(ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("Unable to send outbound command.")
	}
}

func (r *Reducer) archive(msg models.Message) {
	if r.deps.Store != nil {
		r.deps.Store.ArchiveMessage(msg)
	}
}
