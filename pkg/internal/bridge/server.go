package bridge

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var A *fiber.App

// NewServer builds the local window endpoint. It binds to loopback only;
// nothing here is meant to leave the machine.
func (b *Bridge) NewServer() {
	A = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ServerHeader:          "Meridiem.Client",
		AppName:               "Meridiem.Client",
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
	})

	A.Use("/window", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	A.Get("/window", websocket.New(b.windowGateway))
}

func (b *Bridge) Listen() {
	if err := A.Listen(viper.GetString("bridge.bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting the window bridge...")
	}
}

type windowError struct {
	Error string `json:"error"`
}

func (b *Bridge) windowGateway(c *websocket.Conn) {
	sink := b.attach()
	defer b.detach(sink)

	// The pump goroutine is the only writer on this connection; error
	// replies go through the sink too, never straight to the conn.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case raw := <-sink:
				if err := c.WriteMessage(websocket.TextMessage, raw); err != nil {
					return
				}
			}
		}
	}()

	// Greet the fresh window with the current view.
	b.handleCommand(windowCommand{Action: "request_state"})

	// Event loop
	var cmd windowCommand

	for {
		_, packet, err := c.ReadMessage()
		if err != nil {
			break
		}
		if err := jsoniter.Unmarshal(packet, &cmd); err != nil {
			b.replyError(sink, "unable to unmarshal your command, requires json request")
			continue
		}

		if err := b.handleCommand(cmd); err != nil {
			b.replyError(sink, err.Error())
		}
	}
}

// replyError queues an error frame on the window's outbound pipe, dropping
// it if the window cannot keep up.
func (b *Bridge) replyError(sink chan []byte, message string) {
	raw, err := jsoniter.Marshal(windowError{Error: message})
	if err != nil {
		return
	}
	select {
	case sink <- raw:
	default:
	}
}
