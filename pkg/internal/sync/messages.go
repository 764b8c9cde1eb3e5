package sync

import (
	"context"
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/cache"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/policy"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func (r *Reducer) applyMessage(msg models.Message) {
	r.seedContent(msg, msg.ChannelID)
	r.archive(msg)

	if msg.ChannelID == r.state.ActiveChannelID {
		r.state.Messages = append(r.state.Messages, msg)
		if msg.SenderID != r.self.ID && !r.state.Focused &&
			!r.state.Mutes.IsUserMuted(msg.SenderID, r.now()) {
			r.notify(msg)
		}
		return
	}

	r.channelSnaps.Update(msg.ChannelID, func(snap *models.ChannelSnapshot) {
		snap.Messages = append(snap.Messages, msg)
	})

	if msg.SenderID == r.self.ID || r.state.Mutes.IsUserMuted(msg.SenderID, r.now()) {
		return
	}

	verdict := policy.Evaluate(r.state.Mutes, r.contentOf(msg), policy.Target{
		ChannelID: msg.ChannelID,
		ParentID:  r.state.parentOf(msg.ChannelID),
		SenderID:  msg.SenderID,
	}, r.self.Username, r.now())
	if verdict.Unread {
		r.state.Unread[msg.ChannelID] = struct{}{}
	}
	if verdict.Mention {
		r.state.Mentions[msg.ChannelID]++
	}

	r.notify(msg)
}

// seedContent primes the decrypted cache. Cleartext carried on the event
// is seeded directly; otherwise decryption runs as an independent task so
// the event loop never waits on key material.
func (r *Reducer) seedContent(msg models.Message, conversationID string) {
	if msg.Content != "" {
		r.decrypted.SeedOnce(msg.ID, msg.Content)
		return
	}
	if len(msg.Ciphertext) == 0 {
		return
	}
	r.runAsync(func() {
		r.decrypted.SeedOnce(msg.ID, r.resolvePlaintext(msg, conversationID))
	})
}

func (r *Reducer) resolvePlaintext(msg models.Message, conversationID string) string {
	if msg.Content != "" {
		return msg.Content
	}
	if r.deps.Keys == nil {
		return cache.DecryptFailedPlaceholder
	}
	key, err := r.deps.Keys.GetOrDeriveKey(conversationID, msg.SenderID)
	if err != nil {
		log.Warn().Err(err).Str("message", msg.ID).Msg("Unable to resolve message key.")
		return cache.DecryptFailedPlaceholder
	}
	text, err := r.deps.Keys.Decrypt(msg.Ciphertext, key)
	if err != nil {
		log.Warn().Err(err).Str("message", msg.ID).Msg("Unable to decrypt message.")
		return cache.DecryptFailedPlaceholder
	}
	return text
}

func (r *Reducer) contentOf(msg models.Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	if text, ok := r.decrypted.Lookup(msg.ID); ok {
		return text
	}
	return ""
}

func (r *Reducer) notify(msg models.Message) {
	if r.deps.Notifier == nil {
		return
	}
	content := r.contentOf(msg)
	if !r.deps.Notifier.ShouldNotify(msg.ChannelID, msg.SenderID, content, r.state.parentOf(msg.ChannelID), r.self.Username) {
		return
	}
	r.deps.Notifier.ShowDesktopNotification(senderLabel(msg), content)
}

func senderLabel(msg models.Message) string {
	if msg.SenderName != "" {
		return msg.SenderName
	}
	return msg.SenderID
}

func (r *Reducer) applyMessageEdit(p models.MessageEditPayload) {
	editedAt := r.now()
	patch := func(m *models.Message) {
		if p.Content != "" {
			m.Content = p.Content
		}
		if len(p.Ciphertext) > 0 {
			m.Ciphertext = p.Ciphertext
		}
		m.EditedAt = &editedAt
	}
	// Only containers that actually hold the id are touched, so uninvolved
	// views keep reference stability.
	var live bool
	r.state.Messages, live = patchMessage(r.state.Messages, p.ID, patch)
	r.state.SearchResults, _ = patchMessage(r.state.SearchResults, p.ID, patch)
	if live {
		// The patch is in place; bump the version so the view republishes.
		r.state.ViewVersion++
	}
}

func (r *Reducer) applyMessageDelete(p models.MessageDeletePayload) {
	r.state.Messages, _ = removeMessage(r.state.Messages, p.ID)
	r.state.SearchResults, _ = removeMessage(r.state.SearchResults, p.ID)
}

func patchMessage(list []models.Message, id string, fn func(*models.Message)) ([]models.Message, bool) {
	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
			return list, true
		}
	}
	return list, false
}

func removeMessage(list []models.Message, id string) ([]models.Message, bool) {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

func (r *Reducer) applyReaction(p models.ReactionPayload, add bool) {
	if p.ChannelID == r.state.ActiveChannelID {
		groups, changed := mutateReaction(r.state.Reactions[p.MessageID], p.Emoji, p.UserID, add)
		if !changed {
			return
		}
		if len(groups) == 0 {
			delete(r.state.Reactions, p.MessageID)
		} else {
			r.state.Reactions[p.MessageID] = groups
		}
		return
	}
	r.channelSnaps.Update(p.ChannelID, func(snap *models.ChannelSnapshot) {
		groups, changed := mutateReaction(snap.Reactions[p.MessageID], p.Emoji, p.UserID, add)
		if !changed {
			return
		}
		if snap.Reactions == nil {
			snap.Reactions = make(map[string][]models.ReactionGroup)
		}
		if len(groups) == 0 {
			delete(snap.Reactions, p.MessageID)
		} else {
			snap.Reactions[p.MessageID] = groups
		}
	})
}

// mutateReaction applies an add/remove to one message's reaction groups.
// Duplicate adds and removes of absent reactions report no change; a group
// whose last user leaves is deleted outright.
func mutateReaction(groups []models.ReactionGroup, emoji, userID string, add bool) ([]models.ReactionGroup, bool) {
	idx := lo.IndexOf(lo.Map(groups, func(g models.ReactionGroup, _ int) string { return g.Emoji }), emoji)
	if add {
		if idx < 0 {
			return append(groups, models.ReactionGroup{Emoji: emoji, UserIDs: []string{userID}}), true
		}
		if lo.Contains(groups[idx].UserIDs, userID) {
			return groups, false
		}
		groups[idx].UserIDs = append(groups[idx].UserIDs, userID)
		return groups, true
	}
	if idx < 0 || !lo.Contains(groups[idx].UserIDs, userID) {
		return groups, false
	}
	groups[idx].UserIDs = lo.Without(groups[idx].UserIDs, userID)
	if len(groups[idx].UserIDs) == 0 {
		return append(groups[:idx], groups[idx+1:]...), true
	}
	return groups, true
}

func (r *Reducer) applyDirectMessage(p models.DirectMessagePayload) {
	msg := p.Message
	r.archive(msg)

	known := lo.ContainsBy(r.state.Conversations, func(c models.Conversation) bool {
		return c.ID == p.ConversationID
	})

	// One task per message: refresh the conversation list first when this
	// is the opening message of a brand-new thread, then resolve the
	// plaintext, then re-enter the loop to apply and notify.
	r.runAsync(func() {
		var refreshed []models.Conversation
		if !known && r.deps.Fetcher != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			fetched, err := r.deps.Fetcher.ListConversations(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Unable to refresh direct conversation list.")
			} else {
				refreshed = fetched
			}
		}
		text := r.resolvePlaintext(msg, p.ConversationID)
		r.schedule(func() { r.finishDirectMessage(p, refreshed, text) })
	})
}

func (r *Reducer) finishDirectMessage(p models.DirectMessagePayload, refreshed []models.Conversation, text string) {
	r.mergeConversations(refreshed)
	if !lo.ContainsBy(r.state.Conversations, func(c models.Conversation) bool { return c.ID == p.ConversationID }) {
		r.state.Conversations = append(r.state.Conversations, models.Conversation{
			ID:            p.ConversationID,
			CounterpartID: p.Message.SenderID,
		})
	}

	r.decrypted.SeedOnce(p.Message.ID, text)

	active := r.state.ActiveDMID == p.ConversationID
	if active {
		r.state.Messages = append(r.state.Messages, p.Message)
	}

	if p.Message.SenderID == r.self.ID || r.state.Mutes.IsUserMuted(p.Message.SenderID, r.now()) {
		return
	}
	if active && r.state.Focused {
		return
	}
	if r.deps.Notifier != nil {
		r.deps.Notifier.ShowDesktopNotification(senderLabel(p.Message), text)
	}
}

func (r *Reducer) mergeConversations(convs []models.Conversation) {
	for _, conv := range convs {
		if !lo.ContainsBy(r.state.Conversations, func(c models.Conversation) bool { return c.ID == conv.ID }) {
			r.state.Conversations = append(r.state.Conversations, conv)
		}
	}
}
