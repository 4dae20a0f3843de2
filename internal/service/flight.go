package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/store"
)

// FlightResolver looks up the scheduled HH:MM time for a flight on a date.
// ok is false whenever the time cannot be resolved — missing input, missing
// API key, transport failure, or no matching flight. It never errors: flight
// times are advisory and a failed lookup just means "no time shown".
type FlightResolver interface {
	ScheduledTime(ctx context.Context, flightNumber, date string, outbound bool) (hhmm string, ok bool)
}

// FlightService resolves scheduled flight times in the background and
// writes them onto the trip document.
//
// Every resolution carries a token — the flight number and date it was
// issued for. The result is applied only if the trip still shows that exact
// identity when the lookup returns; otherwise it is discarded. This is what
// stops a slow response for an old flight number from overwriting the time
// of the one the user has since typed in.
type FlightService struct {
	store    store.TripStore
	resolver FlightResolver
}

// NewFlightService constructs a FlightService.
func NewFlightService(s store.TripStore, resolver FlightResolver) *FlightService {
	return &FlightService{store: s, resolver: resolver}
}

// flightToken is the identity a resolution was issued for.
type flightToken struct {
	number string
	date   string
}

// NeedsRefresh reports whether the trip has a flight leg with enough
// identity to resolve but no resolved time yet. Callers use it to kick off
// a background refresh when a trip is opened.
func (s *FlightService) NeedsRefresh(trip domain.Trip) bool {
	if trip.Flight == nil {
		return false
	}
	if trip.Flight.Out != "" && trip.CheckInDate != "" && trip.Flight.OutTime == "" {
		return true
	}
	if trip.Flight.In != "" && trip.CheckOutDate != "" && trip.Flight.InTime == "" {
		return true
	}
	return false
}

// RefreshTimes resolves the scheduled times for both flight legs and stores
// whichever results are still current. A leg without a flight number or
// date is skipped; a failed lookup leaves the previous value in place.
// Returns domain.ErrNotFound for an unknown trip.
func (s *FlightService) RefreshTimes(ctx context.Context, tripID uuid.UUID) error {
	trip, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.FlightService.RefreshTimes: %w", err)
	}
	if trip.Flight == nil {
		return nil
	}

	if err := s.refreshLeg(ctx, tripID, flightToken{trip.Flight.Out, trip.CheckInDate}, true); err != nil {
		return err
	}
	return s.refreshLeg(ctx, tripID, flightToken{trip.Flight.In, trip.CheckOutDate}, false)
}

// RefreshAsync runs RefreshTimes in the background with its own timeout.
// Errors are logged, never surfaced — the caller's request has usually
// completed long before the lookup does.
func (s *FlightService) RefreshAsync(tripID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.RefreshTimes(ctx, tripID); err != nil {
			slog.Warn("flight time refresh failed", "trip_id", tripID, "error", err)
		}
	}()
}

// refreshLeg resolves one leg and applies the result token-guarded.
func (s *FlightService) refreshLeg(ctx context.Context, tripID uuid.UUID, token flightToken, outbound bool) error {
	if token.number == "" || token.date == "" {
		return nil
	}

	hhmm, ok := s.resolver.ScheduledTime(ctx, token.number, token.date, outbound)
	if !ok {
		return nil
	}

	// Re-read before applying: the user may have changed the flight number
	// or date while the lookup was in flight.
	trip, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.FlightService.refreshLeg: %w", err)
	}
	if trip.Flight == nil || !s.tokenCurrent(trip, token, outbound) {
		slog.Debug("stale flight time discarded",
			"trip_id", tripID, "flight", token.number, "date", token.date)
		return nil
	}

	flight := *trip.Flight
	if outbound {
		flight.OutTime = hhmm
	} else {
		flight.InTime = hhmm
	}
	if err := s.store.ApplyPatch(ctx, tripID, store.Patch{"flight": flight}); err != nil {
		return fmt.Errorf("service.FlightService.refreshLeg: %w", err)
	}
	return nil
}

// tokenCurrent reports whether the trip still shows the identity the
// resolution was issued for.
func (s *FlightService) tokenCurrent(trip domain.Trip, token flightToken, outbound bool) bool {
	if outbound {
		return trip.Flight.Out == token.number && trip.CheckInDate == token.date
	}
	return trip.Flight.In == token.number && trip.CheckOutDate == token.date
}
