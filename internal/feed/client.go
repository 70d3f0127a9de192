package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"matchctl/internal/model"
)

var ErrClosed = errors.New("feed client closed")

const (
	defaultOutboxSize   = 16
	defaultWriteTimeout = 3 * time.Second
	defaultReadLimit    = 4 << 20
)

type ClientOptions struct {
	Logger       *zap.Logger
	OutboxSize   int
	WriteTimeout time.Duration
	ReadLimit    int64
}

// Client is the websocket side of the live feed. Snapshots pushed by the
// backend are published into an embedded Cell; commands are sent best-effort.
type Client struct {
	*Cell

	url          string
	conn         *websocket.Conn
	logger       *zap.Logger
	writeTimeout time.Duration

	outbox chan []byte
	ready  chan struct{}
	done   chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	readyOnce sync.Once
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	err       error
}

func Dial(ctx context.Context, url string, opts ClientOptions) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial feed %s: %w", url, err)
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	conn.SetReadLimit(opts.ReadLimit)
	return newClient(url, conn, opts), nil
}

func newClient(url string, conn *websocket.Conn, opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = defaultOutboxSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		Cell:         NewCell(model.Snapshot{}),
		url:          url,
		conn:         conn,
		logger:       logger.With(zap.String("component", "feed"), zap.String("url", url)),
		writeTimeout: opts.WriteTimeout,
		outbox:       make(chan []byte, opts.OutboxSize),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	go c.readLoop()
	go c.writeLoop()
	return c
}

func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Send queues a command for the backend. Delivery is best-effort: there is
// no acknowledgement and a command that cannot be queued is dropped.
func (c *Client) Send(command string, payload any) {
	frame, err := Encode(command, payload)
	if err != nil {
		c.logger.Warn("dropping command", zap.String("command", command), zap.Error(err))
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Warn("dropping command", zap.String("command", command), zap.Error(ErrClosed))
		return
	}
	select {
	case c.outbox <- frame:
		c.logger.Debug("command queued", zap.String("command", command))
	default:
		c.logger.Warn("dropping command", zap.String("command", command), zap.String("reason", "outbox full"))
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbox)
		c.mu.Unlock()
		err = c.conn.Close(websocket.StatusNormalClosure, "bye")
		c.cancel()
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.finish(err)
			return
		}

		env, err := Decode(data)
		if err != nil {
			c.logger.Warn("ignoring malformed frame", zap.Error(err))
			continue
		}
		switch env.Type {
		case EventUpdate:
			var snap model.Snapshot
			if err := env.DecodeData(&snap); err != nil {
				c.logger.Warn("ignoring malformed update", zap.Error(err))
				continue
			}
			c.Publish(snap)
			c.readyOnce.Do(func() { close(c.ready) })
			c.logger.Debug("snapshot received",
				zap.Int("servers", len(snap.Servers)),
				zap.Int("matches", len(snap.Matches)),
				zap.Int("groups", len(snap.Groups)),
			)
		default:
			c.logger.Debug("ignoring event", zap.String("type", env.Type))
		}
	}
}

func (c *Client) writeLoop() {
	for frame := range c.outbox {
		ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			c.logger.Warn("command lost", zap.Error(err))
		}
	}
}

func (c *Client) finish(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		err = ErrClosed
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
		err = fmt.Errorf("feed closed by server: %w", err)
	default:
		err = fmt.Errorf("read feed: %w", err)
	}
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	c.logger.Info("feed stopped", zap.Error(err))
}
