package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ryokou-app/backend/internal/middleware"
)

const writeWait = 10 * time.Second

// watchTrips handles GET /trips/watch.
// It upgrades the connection to a websocket and streams trip-list snapshots
// for the authenticated caller: one message immediately, then one whenever
// any of their trips changes. Each message is the full current list — the
// client replaces its state wholesale, so a missed message never matters.
func (s *Server) watchTrips(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	// The request context does not reliably end when a hijacked websocket
	// closes, so the read loop below owns cancellation instead.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, err := s.trips.Watch(ctx, email)
	if err != nil {
		respondError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reads are discarded; the read loop exists to notice a closed peer.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for snapshot := range snapshots {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snapshot); err != nil {
			slog.Debug("watch client gone", "error", err)
			return
		}
	}
}
