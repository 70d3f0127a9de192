package devfeed

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Hub) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/snapshot", SnapshotHandler(h))
	r.Get("/ws", WebsocketHandler(h))
	return r
}
