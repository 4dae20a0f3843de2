package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ryokou-app/backend/internal/domain"
)

// tripChangeChannel is the Postgres notification channel raised by the
// trigger installed in the migrations on every trip insert or update.
const tripChangeChannel = "trip_change"

// WatchByMember subscribes to the member's trip list. It parks a dedicated
// connection on LISTEN and re-runs the membership query on every
// notification, so each element on the returned channel is a complete,
// self-consistent snapshot — receivers replace their working copy wholesale
// rather than merging.
//
// The notification payload (the changed trip's id) is deliberately ignored:
// a change can also add or remove trips from this member's list, so the
// only correct response is to re-query the whole list.
func (s *pgTripStore) WatchByMember(ctx context.Context, email string) (<-chan []domain.Trip, error) {
	if s.pool == nil {
		return nil, errors.New("store.TripStore.WatchByMember: requires a connection pool")
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.TripStore.WatchByMember: acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+tripChangeChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("store.TripStore.WatchByMember: listen: %w", err)
	}

	snapshots := make(chan []domain.Trip, 1)

	go func() {
		defer close(snapshots)
		defer conn.Release()

		// Initial snapshot so subscribers render immediately, then one
		// snapshot per notification until the context is cancelled.
		s.sendSnapshot(ctx, email, snapshots)
		for {
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil {
					slog.Error("trip watch connection lost", "email", email, "error", err)
				}
				return
			}
			s.sendSnapshot(ctx, email, snapshots)
		}
	}()

	return snapshots, nil
}

// sendSnapshot queries the member's trips and delivers them, coalescing:
// if the receiver has not consumed the previous snapshot yet, the stale one
// is dropped so the channel always holds the newest state. With a single
// sender and buffer of one, the drain-then-send below never blocks.
func (s *pgTripStore) sendSnapshot(ctx context.Context, email string, snapshots chan []domain.Trip) {
	trips, err := s.ListByMember(ctx, email)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("trip watch snapshot query failed", "email", email, "error", err)
		}
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}

	select {
	case <-snapshots:
	default:
	}
	select {
	case snapshots <- trips:
	default:
	}
}
