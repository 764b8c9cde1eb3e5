package sync

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/policy"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var validate = validator.New()

const fetchTimeout = 15 * time.Second

// SelectServer switches context to another server: repaint instantly from
// the snapshot when one exists, then refetch the authoritative lists and
// apply them only if the user has not navigated elsewhere meanwhile.
func (r *Reducer) SelectServer(id string) {
	r.saveServerSnapshot()
	r.saveChannelSnapshot()
	r.state.ActiveServerID = id

	if snap, ok := r.serverSnaps.Restore(id); ok {
		r.state.Channels = snap.Channels
		r.state.Members = snap.Members
		r.activateChannelLocally(snap.ActiveChannelID)
	} else {
		r.state.Channels = nil
		r.state.Members = nil
		r.activateChannelLocally("")
	}

	if r.deps.Store != nil {
		r.deps.Store.TouchServer(id)
	}
	if r.deps.Fetcher == nil {
		return
	}
	r.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		channels, chanErr := r.deps.Fetcher.ListChannels(ctx, id)
		members, memErr := r.deps.Fetcher.ListMembers(ctx, id)
		r.schedule(func() {
			if r.state.ActiveServerID != id {
				return // navigated away, drop the stale result
			}
			if chanErr != nil {
				log.Warn().Err(chanErr).Str("server", id).Msg("Unable to refresh channel list.")
			} else {
				r.state.Channels = channels
			}
			if memErr != nil {
				log.Warn().Err(memErr).Str("server", id).Msg("Unable to refresh member list.")
			} else {
				r.state.Members = members
			}
			r.saveServerSnapshot()
		})
	})
}

// SelectChannel follows the same two-phase protocol at channel granularity
// and marks the channel read.
func (r *Reducer) SelectChannel(id string) {
	r.saveChannelSnapshot()
	r.unsubscribeCurrent(id, "")
	r.state.ActiveChannelID = id
	r.state.ActiveDMID = ""
	r.MarkChannelRead(id)

	if snap, ok := r.channelSnaps.Restore(id); ok {
		r.state.loadChannelSnapshot(snap)
	} else {
		r.state.clearLiveChannel()
	}
	r.send(models.NewEvent(models.CommandSubscribe, models.SubscribePayload{ChannelID: id}))

	if r.deps.Fetcher == nil {
		return
	}
	r.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		page, err := r.deps.Fetcher.ListMessages(ctx, id, nil)
		r.schedule(func() {
			if r.state.ActiveChannelID != id {
				return // navigated away, drop the stale result
			}
			if err != nil {
				log.Warn().Err(err).Str("channel", id).Msg("Unable to refresh message history.")
				return
			}
			r.state.loadChannelSnapshot(page)
			r.saveChannelSnapshot()
		})
	})
}

// SelectConversation resumes a direct message thread in the live pane.
func (r *Reducer) SelectConversation(id string) {
	r.saveChannelSnapshot()
	r.unsubscribeCurrent("", id)
	r.state.ActiveChannelID = ""
	r.state.ActiveDMID = id
	r.state.clearLiveChannel()
	r.send(models.NewEvent(models.CommandSubscribe, models.SubscribePayload{ConversationID: id}))
}

// unsubscribeCurrent drops the live subscription being navigated away from,
// unless the target is the same one.
func (r *Reducer) unsubscribeCurrent(nextChannelID, nextConversationID string) {
	if prev := r.state.ActiveChannelID; prev != "" && prev != nextChannelID {
		r.send(models.NewEvent(models.CommandUnsubscribe, models.SubscribePayload{ChannelID: prev}))
	}
	if prev := r.state.ActiveDMID; prev != "" && prev != nextConversationID {
		r.send(models.NewEvent(models.CommandUnsubscribe, models.SubscribePayload{ConversationID: prev}))
	}
}

// MarkChannelRead clears the unread membership and the mention counter
// together; one is never dropped without the other.
func (r *Reducer) MarkChannelRead(id string) {
	delete(r.state.Unread, id)
	delete(r.state.Mentions, id)
}

func (r *Reducer) activateChannelLocally(id string) {
	r.state.ActiveChannelID = id
	r.state.ActiveDMID = ""
	if id == "" {
		r.state.clearLiveChannel()
		return
	}
	r.MarkChannelRead(id)
	if snap, ok := r.channelSnaps.Restore(id); ok {
		r.state.loadChannelSnapshot(snap)
	} else {
		r.state.clearLiveChannel()
	}
}

func (r *Reducer) saveChannelSnapshot() {
	if r.state.ActiveChannelID == "" {
		return
	}
	r.channelSnaps.Save(r.state.ActiveChannelID, r.state.liveChannelSnapshot())
}

func (r *Reducer) saveServerSnapshot() {
	if r.state.ActiveServerID == "" {
		return
	}
	r.serverSnaps.Save(r.state.ActiveServerID, models.ServerSnapshot{
		Channels:        r.state.Channels,
		Members:         r.state.Members,
		ActiveChannelID: r.state.ActiveChannelID,
	})
}

type messageDraft struct {
	TargetID string `validate:"required"`
	Content  string `validate:"required,max=4096"`
}

// SendMessage performs an optimistic local send: the message is appended
// and its cleartext seeded before the gateway acknowledges anything.
func (r *Reducer) SendMessage(content string) {
	targetID := r.state.ActiveChannelID
	if targetID == "" {
		targetID = r.state.ActiveDMID
	}
	if err := validate.Struct(messageDraft{TargetID: targetID, Content: content}); err != nil {
		log.Warn().Err(err).Msg("Rejected outbound message draft.")
		return
	}
	msg := models.Message{
		ID:         uuid.NewString(),
		ChannelID:  r.state.ActiveChannelID,
		SenderID:   r.self.ID,
		SenderName: r.self.Username,
		Content:    content,
		Algorithm:  models.AlgorithmPlain,
		CreatedAt:  r.now(),
	}
	r.state.Messages = append(r.state.Messages, msg)
	r.decrypted.SeedOnce(msg.ID, content)
	r.archive(msg)
	r.send(models.NewEvent(models.CommandSendMessage, models.MessagePayload{Message: msg}))
}

func (r *Reducer) EditMessage(id, content string) {
	if err := validate.Struct(messageDraft{TargetID: id, Content: content}); err != nil {
		log.Warn().Err(err).Msg("Rejected message edit.")
		return
	}
	r.applyMessageEdit(models.MessageEditPayload{ID: id, ChannelID: r.state.ActiveChannelID, Content: content})
	r.send(models.NewEvent(models.CommandEditMessage, models.MessageEditPayload{
		ID:        id,
		ChannelID: r.state.ActiveChannelID,
		Content:   content,
	}))
}

func (r *Reducer) DeleteMessage(id string) {
	r.applyMessageDelete(models.MessageDeletePayload{ID: id, ChannelID: r.state.ActiveChannelID})
	r.send(models.NewEvent(models.CommandDeleteMessage, models.MessageDeletePayload{
		ID:        id,
		ChannelID: r.state.ActiveChannelID,
	}))
}

func (r *Reducer) SetFocused(focused bool) {
	r.state.Focused = focused
}

// SetVoiceChannel is called by the voice subsystem when the user joins or
// leaves a voice channel; the engine only reads it.
func (r *Reducer) SetVoiceChannel(id string) {
	r.state.VoiceChannelID = id
}

func (r *Reducer) SetSearchResults(results []models.Message) {
	r.state.SearchResults = results
}

// Bootstrap runs once per connection-established signal.
func (r *Reducer) Bootstrap() {
	r.state.Presence = map[string]models.Presence{
		r.self.ID: {Online: true, Status: models.StatusOnline},
	}

	textChannels := lo.Filter(r.state.Channels, func(c models.Channel, _ int) bool {
		return c.Type == models.ChannelTypeText
	})
	ids := lo.Map(textChannels, func(c models.Channel, _ int) string { return c.ID })
	if len(ids) == 0 && r.state.ActiveChannelID != "" {
		// Nothing loaded yet: fall back to the previously active channel.
		ids = []string{r.state.ActiveChannelID}
	}
	for _, id := range ids {
		r.send(models.NewEvent(models.CommandSubscribe, models.SubscribePayload{ChannelID: id}))
	}
	if r.state.ActiveDMID != "" {
		r.send(models.NewEvent(models.CommandSubscribe, models.SubscribePayload{ConversationID: r.state.ActiveDMID}))
	}

	if r.deps.Keys != nil {
		r.runAsync(r.deps.Keys.Initialize)
	}
	if r.deps.Fetcher != nil {
		r.runAsync(func() {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()
			convs, err := r.deps.Fetcher.ListConversations(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Unable to prefetch direct conversations.")
				return
			}
			r.schedule(func() { r.mergeConversations(convs) })
		})
	}
}

// ReportLocalActivity feeds one tick of the local activity poll. It only
// matters while connected to a voice channel, and an unchanged activity is
// suppressed so the gateway is not spammed every tick.
func (r *Reducer) ReportLocalActivity(activity *models.Activity) {
	if r.state.VoiceChannelID == "" {
		return
	}
	if activity == nil && r.state.SelfActivity == nil {
		return
	}
	if activity != nil && r.state.SelfActivity != nil && *activity == *r.state.SelfActivity {
		return
	}
	r.state.SelfActivity = activity
	r.send(models.NewEvent(models.CommandActivityUpdate, models.ActivityPayload{
		UserID:   r.self.ID,
		Activity: activity,
	}))
}

// Mutes exposes the mute configuration for the navigation surface.
func (r *Reducer) Mutes() *policy.MuteConfig {
	return &r.state.Mutes
}
