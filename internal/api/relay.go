package api

import (
	"bufio"
	"time"

	"github.com/kp666/twitter-stream/internal/services/relay"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/internal/services/stream/writers"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

// RelayHandler re-serves the received lines to HTTP clients
type RelayHandler struct {
	hub       *relay.Hub
	heartbeat time.Duration
}

// NewRelayHandler creates a relay handler. A non-positive heartbeat disables
// blank keep-alive lines.
func NewRelayHandler(hub *relay.Hub, heartbeat time.Duration) *RelayHandler {
	return &RelayHandler{
		hub:       hub,
		heartbeat: heartbeat,
	}
}

// Stream holds the response open and writes each line as it arrives, CRLF
// delimited, with a blank line every heartbeat interval
func (h *RelayHandler) Stream(c *fiber.Ctx) error {
	sub := h.hub.Subscribe()
	if sub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "stream has ended",
		})
	}

	c.Set("Content-Type", "application/json; charset=utf-8")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	fasthttpCtx := c.Context()
	fasthttpCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		connState := writers.NewFastHTTPConnectionState(fasthttpCtx)
		out := writers.NewHTTPStreamWriter(w, connState, sub.ID())

		if err := h.serve(sub, out, connState); err != nil {
			if contracts.IsExpectedError(err) {
				fiberlog.Infof("[%s] Relay client gone: %v", sub.ID(), err)
			} else {
				fiberlog.Errorf("[%s] Relay error: %v", sub.ID(), err)
			}
		}
	}))

	return nil
}

func (h *RelayHandler) serve(sub *relay.Subscriber, out *writers.HTTPStreamWriter, connState contracts.ConnectionState) error {
	var tick <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Flush the headers so the client sees the connection open
	if err := out.Flush(); err != nil {
		return err
	}

	for {
		select {
		case line, ok := <-sub.Lines():
			if !ok {
				fiberlog.Infof("[%s] Relay finished after %d bytes", sub.ID(), out.TotalBytes())
				return out.Close()
			}
			if err := out.Write(line); err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
		case <-tick:
			if err := out.Heartbeat(); err != nil {
				return err
			}
		case <-connState.Done():
			return contracts.NewClientDisconnectError(sub.ID())
		}
	}
}
