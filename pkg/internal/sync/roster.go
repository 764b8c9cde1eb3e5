package sync

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/samber/lo"
)

func (r *Reducer) applyTyping(p models.TypingPayload) {
	set := r.state.Typing[p.ChannelID]
	if p.Started {
		if _, ok := set[p.UserID]; ok {
			// Duplicate start: short-circuit so upstream never re-renders.
			return
		}
		if set == nil {
			set = make(map[string]struct{})
			r.state.Typing[p.ChannelID] = set
		}
		set[p.UserID] = struct{}{}
		return
	}
	if _, ok := set[p.UserID]; !ok {
		return
	}
	delete(set, p.UserID)
}

func (r *Reducer) applyPresence(p models.PresencePayload) {
	if p.UserID == r.self.ID && !p.Online {
		// The service broadcasts "offline" to mask an invisible user from
		// others, and the acting user receives that broadcast too. The
		// local self status must never be downgraded by it.
		if cur, ok := r.state.Presence[p.UserID]; ok && cur.Status == models.StatusInvisible {
			return
		}
	}
	if !p.Online {
		if _, ok := r.state.Presence[p.UserID]; !ok {
			return
		}
		delete(r.state.Presence, p.UserID)
		return
	}
	next := models.Presence{Online: true, Status: p.Status}
	if cur, ok := r.state.Presence[p.UserID]; ok && cur == next {
		return
	}
	r.state.Presence[p.UserID] = next
}

func (r *Reducer) applyActivityUpdate(p models.ActivityPayload) {
	if p.Activity == nil {
		delete(r.state.Activities, p.UserID)
		return
	}
	if cur, ok := r.state.Activities[p.UserID]; ok && cur == *p.Activity {
		return
	}
	r.state.Activities[p.UserID] = *p.Activity
}

func (r *Reducer) applyMemberJoined(p models.MemberJoinedPayload) {
	present := false
	if p.ServerID == r.state.ActiveServerID {
		if lo.ContainsBy(r.state.Members, func(m models.Member) bool { return m.UserID == p.Member.UserID }) {
			present = true
		} else {
			r.state.Members = append(r.state.Members, p.Member)
		}
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		if lo.ContainsBy(snap.Members, func(m models.Member) bool { return m.UserID == p.Member.UserID }) {
			present = true
			return
		}
		snap.Members = append(snap.Members, p.Member)
	})
	if present || r.deps.Keys == nil {
		return
	}
	r.runAsync(func() { r.deps.Keys.ShareKeyWith(p.ServerID, p.Member.UserID) })
}

func (r *Reducer) applyMemberLeft(p models.MemberLeftPayload) {
	drop := func(members []models.Member) []models.Member {
		return lo.Reject(members, func(m models.Member, _ int) bool { return m.UserID == p.UserID })
	}
	if p.ServerID == r.state.ActiveServerID {
		r.state.Members = drop(r.state.Members)
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		snap.Members = drop(snap.Members)
	})
}

func (r *Reducer) applyMemberRoleUpdated(p models.MemberRolePayload) {
	patch := func(members []models.Member) {
		for i := range members {
			if members[i].UserID == p.UserID {
				members[i].PowerLevel = p.PowerLevel
			}
		}
	}
	if p.ServerID == r.state.ActiveServerID {
		patch(r.state.Members)
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		patch(snap.Members)
	})
}

func (r *Reducer) applyProfileUpdate(p models.ProfileUpdatePayload) {
	patch := func(members []models.Member) {
		for i := range members {
			if members[i].UserID == p.UserID {
				members[i].Name = p.Name
				members[i].Nick = p.Nick
				members[i].Avatar = p.Avatar
			}
		}
	}
	if p.ServerID == r.state.ActiveServerID {
		patch(r.state.Members)
	}
	r.serverSnaps.Update(p.ServerID, func(snap *models.ServerSnapshot) {
		patch(snap.Members)
	})
}
