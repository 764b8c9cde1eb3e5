package bridge

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
)

var validate = validator.New()

// Loop is the event loop inbound window commands are posted to.
type Loop interface {
	Post(fn func(*engine.Reducer))
}

// LoopFunc adapts a function to the Loop interface, useful when the engine
// is constructed after the bridge.
type LoopFunc func(fn func(*engine.Reducer))

func (f LoopFunc) Post(fn func(*engine.Reducer)) { f(fn) }

// Bridge republishes the reduced view to every attached window and relays
// their commands back into the loop. Only the primary surface runs one;
// secondary windows connect to it instead of owning engines of their own.
type Bridge struct {
	loop Loop

	mu    sync.Mutex
	sinks map[chan []byte]struct{}
}

func New(loop Loop) *Bridge {
	return &Bridge{
		loop:  loop,
		sinks: make(map[chan []byte]struct{}),
	}
}

// Publish fans the view out to every window. A window that cannot keep up
// skips frames rather than stalling the loop.
func (b *Bridge) Publish(view engine.View) {
	raw, err := jsoniter.Marshal(view)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for sink := range b.sinks {
		select {
		case sink <- raw:
		default:
		}
	}
}

func (b *Bridge) attach() chan []byte {
	sink := make(chan []byte, 16)
	b.mu.Lock()
	b.sinks[sink] = struct{}{}
	b.mu.Unlock()
	return sink
}

func (b *Bridge) detach(sink chan []byte) {
	b.mu.Lock()
	delete(b.sinks, sink)
	b.mu.Unlock()
}

type windowCommand struct {
	Action    string `json:"action" validate:"required"`
	Content   string `json:"content,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// handleCommand validates and applies one inbound window command.
func (b *Bridge) handleCommand(cmd windowCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	switch cmd.Action {
	case "send_message":
		b.loop.Post(func(r *engine.Reducer) { r.SendMessage(cmd.Content) })
	case "select_channel":
		b.loop.Post(func(r *engine.Reducer) { r.SelectChannel(cmd.ChannelID) })
	case "mark_read":
		b.loop.Post(func(r *engine.Reducer) { r.MarkChannelRead(cmd.ChannelID) })
	case "request_state":
		b.loop.Post(func(r *engine.Reducer) { r.PublishNow() })
	default:
		return fmt.Errorf("unknown window command: %s", cmd.Action)
	}
	return nil
}
