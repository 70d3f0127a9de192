package devfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"matchctl/internal/feed"
	"matchctl/internal/model"
)

const (
	outboxSize   = 8
	writeTimeout = 3 * time.Second
)

func (h *Hub) send(ctx context.Context, msg HubMsg) bool {
	select {
	case h.inbox <- msg:
		return true
	case <-h.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func WebsocketHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			h.logger.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan []byte, outboxSize)
		if !h.send(r.Context(), Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer h.send(context.Background(), Leave{ClientID: clientID})

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case frame, ok := <-out:
					if !ok {
						_ = conn.Close(websocket.StatusGoingAway, "shutting down")
						return
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					err := conn.Write(ctx, websocket.MessageText, frame)
					cancel()
					if err != nil {
						return
					}
				case <-h.Done():
					// A Join still queued at shutdown never gets its outbox closed.
					_ = conn.Close(websocket.StatusGoingAway, "shutting down")
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					h.logger.Debug("client read ended", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}

			env, err := feed.Decode(data)
			if err != nil {
				h.logger.Warn("bad frame", zap.String("client_id", clientID), zap.Error(err))
				continue
			}
			switch env.Type {
			case feed.CommandMatchCreate:
				var draft model.MatchDraft
				if err := env.DecodeData(&draft); err != nil {
					h.logger.Warn("bad match_create payload", zap.String("client_id", clientID), zap.Error(err))
					continue
				}
				h.send(r.Context(), Create{Draft: draft})
			default:
				h.logger.Debug("ignoring command", zap.String("client_id", clientID), zap.String("type", env.Type))
			}
		}
	}
}

func SnapshotHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.Snapshot(r.Context())
		if err != nil {
			http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
