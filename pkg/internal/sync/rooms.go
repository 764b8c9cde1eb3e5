package sync

import (
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/samber/lo"
)

// promptTTL is how long a knock/invite banner stays up before it removes
// itself, unless dismissed earlier.
const promptTTL = 15 * time.Second

func (r *Reducer) applyRoomCreated(p models.RoomCreatedPayload) {
	channel := p.Channel
	if channel.ServerID == r.state.ActiveServerID {
		if !lo.ContainsBy(r.state.Channels, func(c models.Channel) bool { return c.ID == channel.ID }) {
			r.state.Channels = append(r.state.Channels, channel)
		}
	}
	r.serverSnaps.Update(channel.ServerID, func(snap *models.ServerSnapshot) {
		if lo.ContainsBy(snap.Channels, func(c models.Channel) bool { return c.ID == channel.ID }) {
			return
		}
		snap.Channels = append(snap.Channels, channel)
	})
}

func (r *Reducer) applyRoomDeleted(p models.RoomDeletedPayload) {
	if p.ServerID == r.state.ActiveServerID {
		r.state.Channels = lo.Reject(r.state.Channels, func(c models.Channel, _ int) bool { return c.ID == p.ChannelID })
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		snap.Channels = lo.Reject(snap.Channels, func(c models.Channel, _ int) bool { return c.ID == p.ChannelID })
		if snap.ActiveChannelID == p.ChannelID {
			snap.ActiveChannelID = ""
		}
	})

	if p.ChannelID != r.state.ActiveChannelID {
		return
	}
	// Never leave the view pointed at a channel that no longer exists.
	fallback, ok := lo.Find(r.state.Channels, func(c models.Channel) bool { return c.Type == models.ChannelTypeText })
	if !ok {
		r.state.ActiveChannelID = ""
		r.state.clearLiveChannel()
		return
	}
	r.state.ActiveChannelID = fallback.ID
	if snap, restored := r.channelSnaps.Restore(fallback.ID); restored {
		r.state.loadChannelSnapshot(snap)
	} else {
		r.state.clearLiveChannel()
	}
}

func (r *Reducer) applyRoomLockToggled(p models.RoomLockPayload) {
	patch := func(channels []models.Channel) {
		for i := range channels {
			if channels[i].ID == p.ChannelID {
				channels[i].IsLocked = p.Locked
			}
		}
	}
	if p.ServerID == r.state.ActiveServerID {
		patch(r.state.Channels)
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		patch(snap.Channels)
	})
}

func (r *Reducer) applyPrompt(kind models.PromptKind, p models.PromptPayload) {
	if lo.ContainsBy(r.state.Prompts, func(prompt models.Prompt) bool { return prompt.ID == p.ID }) {
		return
	}
	r.state.Prompts = append(r.state.Prompts, models.Prompt{
		ID:        p.ID,
		Kind:      kind,
		ChannelID: p.ChannelID,
		SenderID:  p.SenderID,
		At:        r.now(),
	})
	r.after(promptTTL, func() { r.DismissPrompt(p.ID) })
}

// DismissPrompt removes a knock/invite banner. Both the user's dismissal
// and the self-expiry funnel through here, so removing an entry that is
// already gone is safe.
func (r *Reducer) DismissPrompt(id string) {
	r.state.Prompts = lo.Reject(r.state.Prompts, func(p models.Prompt, _ int) bool { return p.ID == id })
}

func (r *Reducer) applySoundboardPlay(p models.SoundboardPayload) {
	if r.state.VoiceChannelID != p.ChannelID || r.deps.Notifier == nil {
		return
	}
	r.deps.Notifier.PlaySound()
}
