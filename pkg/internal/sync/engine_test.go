package sync

import (
	"context"
	"testing"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/cache"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

type capturingPublisher struct {
	views chan View
}

func (p *capturingPublisher) Publish(view View) { p.views <- view }

func startEngine(t *testing.T, r *Reducer) *Engine {
	t.Helper()
	e := NewEngine(r)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.Run(ctx)
	return e
}

func TestEngineAppliesOpsInArrivalOrder(t *testing.T) {
	r := NewReducer(Identity{ID: "self", Username: "maya"}, Deps{},
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	e := startEngine(t, r)

	for _, user := range []string{"u-1", "u-2", "u-3"} {
		e.Dispatch(models.NewEvent(models.EventTyping, models.TypingPayload{
			ChannelID: "c-1", UserID: user, Started: true,
		}))
	}
	e.Dispatch(models.NewEvent(models.EventTyping, models.TypingPayload{
		ChannelID: "c-1", UserID: "u-2", Started: false,
	}))
	e.Flush()

	if got := len(r.state.Typing["c-1"]); got != 2 {
		t.Fatalf("typing set = %d, want 2 after ordered start/stop", got)
	}
}

func TestEnginePublishesOnlyWhenTheViewChanges(t *testing.T) {
	pub := &capturingPublisher{views: make(chan View, 8)}
	r := NewReducer(Identity{ID: "self"}, Deps{Publisher: pub},
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	e := startEngine(t, r)

	e.Post(func(r *Reducer) { r.state.ActiveChannelID = "c-1" })
	e.Flush()

	select {
	case view := <-pub.views:
		if view.ActiveChannelID != "c-1" {
			t.Fatalf("published view = %#v", view)
		}
	default:
		t.Fatalf("a view change must be published")
	}

	// Churn that leaves the published fields alone stays silent.
	e.Post(func(r *Reducer) { r.state.Unread["c-9"] = struct{}{} })
	e.Flush()

	if len(pub.views) != 0 {
		t.Fatalf("unrelated state churn must not republish")
	}
}

func TestPublishNowRepeatsTheCurrentView(t *testing.T) {
	pub := &capturingPublisher{views: make(chan View, 8)}
	r := NewReducer(Identity{ID: "self"}, Deps{Publisher: pub},
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	e := startEngine(t, r)

	e.Post(func(r *Reducer) { r.state.ActiveChannelID = "c-1" })
	e.Post(func(r *Reducer) { r.PublishNow() })
	e.Flush()

	if len(pub.views) != 2 {
		t.Fatalf("views published = %d, want the change plus the forced repeat", len(pub.views))
	}
}

func TestEditingAMessagePublishes(t *testing.T) {
	pub := &capturingPublisher{views: make(chan View, 8)}
	r := NewReducer(Identity{ID: "self"}, Deps{Publisher: pub},
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	e := startEngine(t, r)

	e.Post(func(r *Reducer) { r.state.ActiveChannelID = "c-1" })
	e.Dispatch(models.NewEvent(models.EventMessage, models.MessagePayload{Message: models.Message{
		ID: "m-1", ChannelID: "c-1", SenderID: "u-2", Content: "draft",
	}}))
	e.Flush()
	for len(pub.views) > 0 {
		<-pub.views
	}

	// An edit patches the live list in place; the view must still go out.
	e.Dispatch(models.NewEvent(models.EventMessageEdit, models.MessageEditPayload{
		ID: "m-1", ChannelID: "c-1", Content: "edited",
	}))
	e.Flush()

	select {
	case view := <-pub.views:
		if len(view.Messages) != 1 || view.Messages[0].Content != "edited" {
			t.Fatalf("published view = %#v", view)
		}
	default:
		t.Fatalf("an in-place edit must republish the view")
	}
}

func TestAppendingAMessagePublishes(t *testing.T) {
	pub := &capturingPublisher{views: make(chan View, 8)}
	r := NewReducer(Identity{ID: "self"}, Deps{Publisher: pub},
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	e := startEngine(t, r)

	e.Post(func(r *Reducer) { r.state.ActiveChannelID = "c-1" })
	e.Dispatch(models.NewEvent(models.EventMessage, models.MessagePayload{Message: models.Message{
		ID: "m-1", ChannelID: "c-1", SenderID: "u-2", Content: "hello",
	}}))
	e.Flush()

	var last View
	for len(pub.views) > 0 {
		last = <-pub.views
	}
	if len(last.Messages) != 1 || last.Messages[0].ID != "m-1" {
		t.Fatalf("last view = %#v", last)
	}
}
