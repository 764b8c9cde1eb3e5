package gateway

import (
	"context"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

func TestCallResolvesOnMatchingReply(t *testing.T) {
	g := New()

	done := make(chan struct{})
	var got jsoniter.RawMessage
	var gotErr error
	go func() {
		defer close(done)
		got, gotErr = g.Call(context.Background(), "channels.list", nil)
	}()

	// Pick up the request frame the call queued and answer it.
	req := nextCall(t, g)
	g.handleFrame(models.NewEvent(models.EventReply, models.CallReply{
		ID:      req.ID,
		Payload: jsoniter.RawMessage(`[{"id":"c-1"}]`),
	}).Marshal())

	<-done
	if gotErr != nil {
		t.Fatalf("call failed: %v", gotErr)
	}
	var channels []models.Channel
	if err := jsoniter.Unmarshal(got, &channels); err != nil || len(channels) != 1 {
		t.Fatalf("reply payload = %s (%v)", got, err)
	}
}

func TestCallSurfacesRemoteError(t *testing.T) {
	g := New()

	done := make(chan error, 1)
	go func() {
		_, err := g.Call(context.Background(), "messages.history", historyQuery{ChannelID: "c-404"})
		done <- err
	}()

	req := nextCall(t, g)
	g.handleFrame(models.NewEvent(models.EventReply, models.CallReply{
		ID:    req.ID,
		Error: "no such channel",
	}).Marshal())

	if err := <-done; err == nil || err.Error() != "no such channel" {
		t.Fatalf("remote error not surfaced: %v", err)
	}
}

func TestCallHonorsContextCancellation(t *testing.T) {
	g := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := g.Call(ctx, "members.list", nil); err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestReplyForUnknownIdIsDropped(t *testing.T) {
	g := New()
	g.handleFrame(models.NewEvent(models.EventReply, models.CallReply{ID: "nobody-waits"}).Marshal())
}

func TestLiveEventsReachTheHandler(t *testing.T) {
	g := New()
	var seen []models.Event
	g.SetEventHandler(func(ev models.Event) { seen = append(seen, ev) })

	g.handleFrame(models.NewEvent(models.EventTyping, models.TypingPayload{ChannelID: "c-1", UserID: "u-1", Started: true}).Marshal())
	g.handleFrame([]byte(`{not json`))

	if len(seen) != 1 || seen[0].Type != models.EventTyping {
		t.Fatalf("handler saw %#v", seen)
	}
}

// nextCall pops the next queued outbound frame and decodes it as a call
// request.
func nextCall(t *testing.T, g *Gateway) models.CallRequest {
	t.Helper()
	select {
	case packet := <-g.outbox:
		ev, err := models.ParseEvent(packet)
		if err != nil || ev.Type != models.EventCall {
			t.Fatalf("unexpected outbound frame: %s (%v)", packet, err)
		}
		var req models.CallRequest
		if err := ev.Decode(&req); err != nil {
			t.Fatalf("malformed call request: %v", err)
		}
		return req
	case <-time.After(time.Second):
		t.Fatalf("no call request was queued")
		return models.CallRequest{}
	}
}
