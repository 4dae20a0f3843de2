// Package service contains the business logic for the Ryokou API.
// Services validate inputs, enforce business rules, and orchestrate store
// calls. No SQL lives here — services depend on the store interface, not
// its Postgres implementation.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/store"
)

// TripService implements trip lifecycle and itinerary operations.
type TripService struct {
	store store.TripStore
}

// NewTripService constructs a TripService backed by the provided TripStore.
func NewTripService(s store.TripStore) *TripService {
	return &TripService{store: s}
}

// Create persists the default trip skeleton with the creator as sole member.
// Returns domain.ErrValidation if the creator email is unusable.
func (s *TripService) Create(ctx context.Context, creatorEmail string) (domain.Trip, error) {
	email := strings.TrimSpace(creatorEmail)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Trip{}, fmt.Errorf("%w: creator email is required", domain.ErrValidation)
	}

	trip, err := s.store.Create(ctx, domain.NewTrip(email))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return trip, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListByMember returns the trips the given email belongs to.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByMember(ctx context.Context, email string) ([]domain.Trip, error) {
	trips, err := s.store.ListByMember(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByMember: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Watch subscribes to trip-list snapshots for the given email.
func (s *TripService) Watch(ctx context.Context, email string) (<-chan []domain.Trip, error) {
	ch, err := s.store.WatchByMember(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Watch: %w", err)
	}
	return ch, nil
}

// InfoUpdate carries the editable display fields of a trip. Nil pointers
// mean "leave unchanged". Setting a flight number replaces the whole flight
// block and drops any previously resolved times — they belong to the old
// number and will be re-resolved in the background.
type InfoUpdate struct {
	Title        *string
	DateRange    *string
	City         *string
	CoverColor   *string
	CheckInDate  *string
	CheckOutDate *string
	FlightOut    *string
	FlightIn     *string
	HotelName    *string
	HotelAddress *string
}

// touchesFlightIdentity reports whether the update changes any field the
// flight-time resolution depends on.
func (u InfoUpdate) touchesFlightIdentity() bool {
	return u.FlightOut != nil || u.FlightIn != nil || u.CheckInDate != nil || u.CheckOutDate != nil
}

// UpdateInfo applies a partial update of display fields and returns the
// resulting trip. The second return value reports whether the flight
// identity (numbers or travel dates) changed, so the caller can kick off a
// background flight-time refresh.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) UpdateInfo(ctx context.Context, id uuid.UUID, update InfoUpdate) (domain.Trip, bool, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, false, fmt.Errorf("service.TripService.UpdateInfo: %w", err)
	}

	patch := store.Patch{}
	setString := func(field string, v *string) {
		if v != nil {
			patch[field] = *v
		}
	}
	setString("title", update.Title)
	setString("dateRange", update.DateRange)
	setString("city", update.City)
	setString("coverColor", update.CoverColor)
	setString("checkInDate", update.CheckInDate)
	setString("checkOutDate", update.CheckOutDate)

	if update.FlightOut != nil || update.FlightIn != nil {
		flight := domain.Flight{}
		if current.Flight != nil {
			flight.Out = current.Flight.Out
			flight.In = current.Flight.In
		}
		if update.FlightOut != nil {
			flight.Out = strings.TrimSpace(*update.FlightOut)
		}
		if update.FlightIn != nil {
			flight.In = strings.TrimSpace(*update.FlightIn)
		}
		patch["flight"] = flight
	}

	if update.HotelName != nil || update.HotelAddress != nil {
		hotel := domain.Hotel{}
		if current.Hotel != nil {
			hotel = *current.Hotel
		}
		if update.HotelName != nil {
			hotel.Name = *update.HotelName
		}
		if update.HotelAddress != nil {
			hotel.Address = *update.HotelAddress
		}
		patch["hotel"] = hotel
	}

	if len(patch) == 0 {
		return current, false, nil
	}

	if err := s.store.ApplyPatch(ctx, id, patch); err != nil {
		return domain.Trip{}, false, fmt.Errorf("service.TripService.UpdateInfo: %w", err)
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, false, fmt.Errorf("service.TripService.UpdateInfo: reload: %w", err)
	}
	return updated, update.touchesFlightIdentity(), nil
}

// AddDay appends the next itinerary day skeleton and returns the updated trip.
func (s *TripService) AddDay(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddDay: %w", err)
	}

	updated := domain.AppendDay(current)
	if err := s.store.ApplyPatch(ctx, id, store.Patch{"days": updated.Days}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddDay: %w", err)
	}
	return updated, nil
}

// AddEvent appends an event to the day at dayIdx and returns the updated trip.
// Returns domain.ErrNotFound for an unknown trip or day index, and
// domain.ErrValidation for an unknown event type.
func (s *TripService) AddEvent(ctx context.Context, id uuid.UUID, dayIdx int, ev domain.Event) (domain.Trip, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddEvent: %w", err)
	}

	updated, err := domain.AppendEvent(current, dayIdx, ev)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := s.store.ApplyPatch(ctx, id, store.Patch{"days": updated.Days}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddEvent: %w", err)
	}
	return updated, nil
}
