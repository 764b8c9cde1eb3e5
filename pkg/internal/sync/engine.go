package sync

import (
	"context"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

// Engine owns the reducer's state with a single goroutine. Inbound events
// and async-task completions arrive on one channel, so every mutation is
// fully applied before the next begins, without fine-grained locks.
type Engine struct {
	reducer *Reducer
	ops     chan func(*Reducer)
}

func NewEngine(reducer *Reducer) *Engine {
	e := &Engine{
		reducer: reducer,
		ops:     make(chan func(*Reducer), 256),
	}
	reducer.schedule = func(fn func()) {
		e.ops <- func(*Reducer) { fn() }
	}
	return e
}

// Run processes operations until the context is cancelled. It is the only
// goroutine that ever touches the reducer's state.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-e.ops:
			op(e.reducer)
			e.reducer.PublishIfChanged()
		}
	}
}

// Post queues one operation onto the loop.
func (e *Engine) Post(fn func(*Reducer)) {
	e.ops <- fn
}

// Dispatch queues one inbound event, preserving arrival order.
func (e *Engine) Dispatch(ev models.Event) {
	e.Post(func(r *Reducer) { r.Apply(ev) })
}

// Flush blocks until every previously queued operation has been applied.
func (e *Engine) Flush() {
	done := make(chan struct{})
	e.Post(func(*Reducer) { close(done) })
	<-done
}

func (e *Engine) SelectServer(id string) { e.Post(func(r *Reducer) { r.SelectServer(id) }) }

func (e *Engine) SelectChannel(id string) { e.Post(func(r *Reducer) { r.SelectChannel(id) }) }

func (e *Engine) SelectConversation(id string) {
	e.Post(func(r *Reducer) { r.SelectConversation(id) })
}

func (e *Engine) MarkChannelRead(id string) { e.Post(func(r *Reducer) { r.MarkChannelRead(id) }) }

func (e *Engine) SendMessage(content string) { e.Post(func(r *Reducer) { r.SendMessage(content) }) }

func (e *Engine) EditMessage(id, content string) {
	e.Post(func(r *Reducer) { r.EditMessage(id, content) })
}

func (e *Engine) DeleteMessage(id string) { e.Post(func(r *Reducer) { r.DeleteMessage(id) }) }

func (e *Engine) SetFocused(focused bool) { e.Post(func(r *Reducer) { r.SetFocused(focused) }) }
