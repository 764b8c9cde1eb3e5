package session

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
)

// Stream is the gateway surface the sequencer drives.
type Stream interface {
	SetConnectHandler(handler func())
	SetEventHandler(handler func(models.Event))
}

// Loop is the event loop the sequencer feeds.
type Loop interface {
	Dispatch(ev models.Event)
	Post(fn func(*engine.Reducer))
}

// Detector reports what the user is doing locally, e.g. the game currently
// running. A nil result means no reportable activity.
type Detector interface {
	Detect() *models.Activity
}

// Sequencer wires the gateway's connection lifecycle to the engine: every
// (re)connect triggers a bootstrap pass, live events flow straight into the
// loop, and the activity poll ticks on a timer owned by the caller.
type Sequencer struct {
	stream   Stream
	loop     Loop
	detector Detector
}

func NewSequencer(stream Stream, loop Loop, detector Detector) *Sequencer {
	return &Sequencer{stream: stream, loop: loop, detector: detector}
}

// Start installs the gateway handlers. Call once before dialing.
func (s *Sequencer) Start() {
	s.stream.SetConnectHandler(func() {
		s.loop.Post(func(r *engine.Reducer) { r.Bootstrap() })
	})
	s.stream.SetEventHandler(s.loop.Dispatch)
}

// PollActivity runs one tick of the local activity poll. Detection happens
// on the caller's goroutine; only the report enters the loop.
func (s *Sequencer) PollActivity() {
	if s.detector == nil {
		return
	}
	activity := s.detector.Detect()
	s.loop.Post(func(r *engine.Reducer) { r.ReportLocalActivity(activity) })
}
