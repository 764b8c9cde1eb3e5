package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrOutboxFull = errors.New("gateway outbox is full")

// Call performs one request/reply exchange over the event stream. Replies
// are correlated by a generated id; a reply for an id nobody is waiting on
// is dropped.
func (g *Gateway) Call(ctx context.Context, action string, payload any) (jsoniter.RawMessage, error) {
	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()

	reply := make(chan models.CallReply, 1)
	g.pendingMu.Lock()
	g.pending[id] = reply
	g.pendingMu.Unlock()
	defer func() {
		g.pendingMu.Lock()
		delete(g.pending, id)
		g.pendingMu.Unlock()
	}()

	if err := g.Send(models.NewEvent(models.EventCall, models.CallRequest{
		ID:      id,
		Action:  action,
		Payload: raw,
	})); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-reply:
		if out.Error != "" {
			return nil, errors.New(out.Error)
		}
		return out.Payload, nil
	}
}

// handleFrame routes one inbound frame: reply frames resolve pending calls,
// everything else is a live event.
func (g *Gateway) handleFrame(packet []byte) {
	ev, err := models.ParseEvent(packet)
	if err != nil {
		log.Warn().Err(err).Msg("Dropped a malformed gateway frame.")
		return
	}

	if ev.Type == models.EventReply {
		var out models.CallReply
		if err := ev.Decode(&out); err != nil {
			log.Warn().Err(err).Msg("Dropped a malformed call reply.")
			return
		}
		g.pendingMu.Lock()
		waiting, ok := g.pending[out.ID]
		g.pendingMu.Unlock()
		if ok {
			waiting <- out
		}
		return
	}

	if g.onEvent != nil {
		g.onEvent(ev)
	}
}
