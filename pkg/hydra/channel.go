package hydra

import (
	"context"
	"sync/atomic"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// DefaultReconnectRate is the number of connection attempts allowed per
// second.
const DefaultReconnectRate = 1

// EventChannel keeps a websocket open to a node and republishes every
// decoded event. Disconnections are retried forever; Online reports whether
// a connection is currently established.
type EventChannel struct {
	info    ConnectionInfo
	dialer  *websocket.Dialer
	limiter ratelimit.Limiter
	online  atomic.Bool

	in  chan Event
	out chan Event
}

// NewEventChannel returns a channel for the node at info. reconnectRate
// bounds the connection attempts per second, a non positive value falls
// back to DefaultReconnectRate.
func NewEventChannel(info ConnectionInfo, reconnectRate int) *EventChannel {
	if reconnectRate <= 0 {
		reconnectRate = DefaultReconnectRate
	}
	return &EventChannel{
		info:    info,
		dialer:  websocket.DefaultDialer,
		limiter: ratelimit.New(reconnectRate),
		in:      make(chan Event),
		out:     make(chan Event),
	}
}

// Events returns the stream of decoded events. It is closed once Start
// returns.
func (c *EventChannel) Events() <-chan Event {
	return c.out
}

// Online tells whether the websocket is currently connected.
func (c *EventChannel) Online() bool {
	return c.online.Load()
}

// Start connects and reads events until ctx is done. It never gives up on
// connection errors.
func (c *EventChannel) Start(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.pump(ctx)
	}()

	url := c.info.WebsocketURL() + "/?history=no"
	for ctx.Err() == nil {
		c.limiter.Take()

		conn, _, err := c.dialer.DialContext(ctx, url, nil)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).WithField("node", c.info.Host).Warn("failed to connect to node, retrying")
			}
			continue
		}

		c.online.Store(true)
		log.WithField("node", c.info.Host).Debug("connected to node event stream")
		err = c.read(ctx, conn)
		c.online.Store(false)

		if ctx.Err() == nil {
			log.WithError(err).WithField("node", c.info.Host).Warn(
				"connection dropped unexpectedly. Trying to reconnect...",
			)
		}
	}

	<-done
	close(c.out)
	return nil
}

func (c *EventChannel) read(ctx context.Context, conn *websocket.Conn) error {
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
		case <-closed:
		}
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		event, err := DecodeEvent(raw)
		if err != nil {
			log.WithError(err).WithField("node", c.info.Host).Warn("skipping malformed event")
			continue
		}
		select {
		case c.in <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pump moves events from in to out through an unbounded buffer, so a slow
// consumer never stalls the websocket reader.
func (c *EventChannel) pump(ctx context.Context) {
	var queue []Event
	for {
		var out chan Event
		var next Event
		if len(queue) > 0 {
			out = c.out
			next = queue[0]
		}

		select {
		case <-ctx.Done():
			return
		case event := <-c.in:
			queue = append(queue, event)
		case out <- next:
			queue[0] = nil
			queue = queue[1:]
		}
	}
}
