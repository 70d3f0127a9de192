// Package devfeed is a local stand-in for the match backend. It pushes a demo
// snapshot over the same websocket protocol the console consumes and keeps
// created matches in memory.
package devfeed

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"matchctl/internal/feed"
	"matchctl/internal/model"
)

var ErrMissingMatchID = errors.New("match id is required")

type HubMsg interface{ isHubMsg() }

type Join struct {
	ClientID string
	Outbox   chan []byte
}

type Leave struct {
	ClientID string
}

type Create struct {
	Draft model.MatchDraft
	Reply chan error
}

type Replace struct {
	Snapshot model.Snapshot
}

type Get struct {
	Reply chan model.Snapshot
}

type Shutdown struct{}

func (Join) isHubMsg()     {}
func (Leave) isHubMsg()    {}
func (Create) isHubMsg()   {}
func (Replace) isHubMsg()  {}
func (Get) isHubMsg()      {}
func (Shutdown) isHubMsg() {}

// Hub owns the snapshot and the connected clients. All state is confined to
// the loop goroutine.
type Hub struct {
	inbox    chan HubMsg
	snapshot model.Snapshot
	clients  map[string]chan []byte
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, initial model.Snapshot, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		snapshot: initial.Normalize(),
		clients:  make(map[string]chan []byte),
		logger:   logger.With(zap.String("component", "devfeed")),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) Snapshot(ctx context.Context) (model.Snapshot, error) {
	reply := make(chan model.Snapshot, 1)
	select {
	case h.inbox <- Get{Reply: reply}:
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	case <-h.ctx.Done():
		return model.Snapshot{}, h.ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	case <-h.ctx.Done():
		return model.Snapshot{}, h.ctx.Err()
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeClients()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				h.clients[msg.ClientID] = msg.Outbox
				h.push(msg.Outbox)
				h.logger.Info("client joined", zap.String("client_id", msg.ClientID), zap.Int("clients", len(h.clients)))

			case Leave:
				if out, ok := h.clients[msg.ClientID]; ok {
					close(out)
					delete(h.clients, msg.ClientID)
				}
				h.logger.Info("client left", zap.String("client_id", msg.ClientID), zap.Int("clients", len(h.clients)))

			case Create:
				err := h.create(msg.Draft)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Replace:
				h.snapshot = msg.Snapshot.Normalize()
				h.broadcast()

			case Get:
				msg.Reply <- h.snapshot.Normalize()

			case Shutdown:
				h.cancel()
			}
		}
	}
}

func (h *Hub) create(draft model.MatchDraft) error {
	if strings.TrimSpace(draft.ID) == "" {
		h.logger.Warn("rejecting match without id")
		return ErrMissingMatchID
	}
	h.snapshot.Matches = append(h.snapshot.Matches, model.Match(draft))
	h.logger.Info("match created",
		zap.String("match_id", draft.ID),
		zap.String("server", draft.Server),
		zap.String("team1", draft.Team1.Name),
		zap.String("team2", draft.Team2.Name),
	)
	h.broadcast()
	return nil
}

func (h *Hub) broadcast() {
	for _, out := range h.clients {
		h.push(out)
	}
}

// push never blocks the loop; a client that cannot keep up misses the frame
// and catches up on the next one, which carries the full state.
func (h *Hub) push(out chan []byte) {
	frame, err := feed.Encode(feed.EventUpdate, h.snapshot)
	if err != nil {
		h.logger.Error("encode snapshot", zap.Error(err))
		return
	}
	select {
	case out <- frame:
	default:
		h.logger.Warn("client outbox full, frame skipped")
	}
}

func (h *Hub) closeClients() {
	for id, out := range h.clients {
		close(out)
		delete(h.clients, id)
	}
}
