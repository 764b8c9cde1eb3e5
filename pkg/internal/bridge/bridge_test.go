package bridge

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
)

type recordingLoop struct {
	posted []func(*engine.Reducer)
}

func (l *recordingLoop) Post(fn func(*engine.Reducer)) {
	l.posted = append(l.posted, fn)
}

func TestPublishReachesEveryAttachedWindow(t *testing.T) {
	b := New(&recordingLoop{})
	first := b.attach()
	second := b.attach()

	b.Publish(engine.View{ActiveChannelID: "c-1", ChannelName: "general"})

	for _, sink := range []chan []byte{first, second} {
		select {
		case raw := <-sink:
			var view engine.View
			if err := jsoniter.Unmarshal(raw, &view); err != nil || view.ActiveChannelID != "c-1" {
				t.Fatalf("window received %s (%v)", raw, err)
			}
		default:
			t.Fatalf("a window missed the published view")
		}
	}
}

func TestDetachedWindowReceivesNothing(t *testing.T) {
	b := New(&recordingLoop{})
	sink := b.attach()
	b.detach(sink)

	b.Publish(engine.View{ActiveChannelID: "c-1"})

	select {
	case <-sink:
		t.Fatalf("detached window must not receive views")
	default:
	}
}

func TestSlowWindowSkipsFramesInsteadOfBlocking(t *testing.T) {
	b := New(&recordingLoop{})
	sink := b.attach()

	for i := 0; i < cap(sink)+10; i++ {
		b.Publish(engine.View{Messages: []models.Message{{ID: "m"}}})
	}

	if len(sink) != cap(sink) {
		t.Fatalf("sink depth = %d, want full buffer with overflow dropped", len(sink))
	}
}

func TestErrorRepliesFlowThroughTheWindowPipe(t *testing.T) {
	b := New(&recordingLoop{})
	sink := b.attach()

	// Error replies share the single outbound pipe with published views, so
	// only the pump goroutine ever writes the connection.
	b.replyError(sink, "unknown window command: self_destruct")
	b.Publish(engine.View{ActiveChannelID: "c-1"})

	var frames [][]byte
	for len(sink) > 0 {
		frames = append(frames, <-sink)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want error reply then view", len(frames))
	}
	var reply windowError
	if err := jsoniter.Unmarshal(frames[0], &reply); err != nil || reply.Error == "" {
		t.Fatalf("first frame = %s (%v)", frames[0], err)
	}
}

func TestCommandsArePostedToTheLoop(t *testing.T) {
	loop := &recordingLoop{}
	b := New(loop)

	for _, cmd := range []windowCommand{
		{Action: "send_message", Content: "hello"},
		{Action: "select_channel", ChannelID: "c-2"},
		{Action: "mark_read", ChannelID: "c-2"},
		{Action: "request_state"},
	} {
		if err := b.handleCommand(cmd); err != nil {
			t.Fatalf("handleCommand(%s): %v", cmd.Action, err)
		}
	}

	if len(loop.posted) != 4 {
		t.Fatalf("posted = %d, want 4", len(loop.posted))
	}
}

func TestUnknownAndMalformedCommandsAreRejected(t *testing.T) {
	b := New(&recordingLoop{})

	if err := b.handleCommand(windowCommand{Action: "self_destruct"}); err == nil {
		t.Fatalf("unknown action must be rejected")
	}
	if err := b.handleCommand(windowCommand{}); err == nil {
		t.Fatalf("missing action must fail validation")
	}
}
