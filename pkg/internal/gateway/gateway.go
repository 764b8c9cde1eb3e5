package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	redialInterval = 5 * time.Second
)

// Gateway maintains one websocket connection to the event stream, redialing
// with a flat interval when it drops. Inbound frames are either replies to
// an in-flight call or live events handed to the event handler.
type Gateway struct {
	dialer *websocket.Dialer
	outbox chan []byte

	onConnect func()
	onEvent   func(models.Event)

	pendingMu sync.Mutex
	pending   map[string]chan models.CallReply
}

func New() *Gateway {
	return &Gateway{
		dialer:  websocket.DefaultDialer,
		outbox:  make(chan []byte, 256),
		pending: make(map[string]chan models.CallReply),
	}
}

// SetConnectHandler registers the callback fired after every successful
// dial, including reconnects.
func (g *Gateway) SetConnectHandler(handler func()) {
	g.onConnect = handler
}

// SetEventHandler registers the callback for live events.
func (g *Gateway) SetEventHandler(handler func(models.Event)) {
	g.onEvent = handler
}

// Run dials and pumps the connection until the context is cancelled. Each
// drop is logged and followed by a redial after a fixed interval.
func (g *Gateway) Run(ctx context.Context) {
	endpoint := viper.GetString("gateway.endpoint")
	header := http.Header{}
	if token := viper.GetString("gateway.token"); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	for {
		conn, _, err := g.dialer.DialContext(ctx, endpoint, header)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("Unable to reach the gateway, will retry.")
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialInterval):
				continue
			}
		}

		if g.onConnect != nil {
			g.onConnect()
		}
		g.pump(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}
		log.Warn().Str("endpoint", endpoint).Msg("Gateway connection dropped, redialing.")
	}
}

// pump runs the read and write sides of one connection and returns when
// either fails or the context is cancelled.
func (g *Gateway) pump(ctx context.Context, conn *websocket.Conn) {
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			_, packet, err := conn.ReadMessage()
			if err != nil {
				return
			}
			g.handleFrame(packet)
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case <-readDone:
			return
		case packet := <-g.outbox:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, packet); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send queues one event for the write pump. It never blocks the caller; a
// full queue means the connection is stalled beyond saving anyway.
func (g *Gateway) Send(ev models.Event) error {
	select {
	case g.outbox <- ev.Marshal():
		return nil
	default:
		return ErrOutboxFull
	}
}
