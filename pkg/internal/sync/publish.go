package sync

import "github.com/meridiem-chat/meridiem-client/pkg/internal/models"

// viewIdentity is a shallow fingerprint of exactly the three published
// fields. Unrelated state churn leaves it untouched, so secondary surfaces
// are not spammed with identical views.
type viewIdentity struct {
	head    *models.Message
	length  int
	version int
	active  string
	name    string
}

func (r *Reducer) currentView() (View, viewIdentity) {
	name := r.state.channelName(r.state.ActiveChannelID)
	view := View{
		Messages:        r.state.Messages,
		ActiveChannelID: r.state.ActiveChannelID,
		ChannelName:     name,
	}
	identity := viewIdentity{
		length:  len(view.Messages),
		version: r.state.ViewVersion,
		active:  view.ActiveChannelID,
		name:    name,
	}
	if identity.length > 0 {
		identity.head = &r.state.Messages[0]
	}
	return view, identity
}

// PublishIfChanged pushes the reduced view to secondary surfaces when one
// of {message list, active channel id, channel name} changed.
func (r *Reducer) PublishIfChanged() {
	if r.deps.Publisher == nil {
		return
	}
	view, identity := r.currentView()
	if identity == r.lastView {
		return
	}
	r.lastView = identity
	r.deps.Publisher.Publish(view)
}

// PublishNow force-publishes the current view, e.g. when a secondary
// surface asks for state right after attaching.
func (r *Reducer) PublishNow() {
	if r.deps.Publisher == nil {
		return
	}
	view, identity := r.currentView()
	r.lastView = identity
	r.deps.Publisher.Publish(view)
}
