package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/service"
	"github.com/ryokou-app/backend/internal/store"
)

type mockFlightResolver struct {
	scheduledTime func(ctx context.Context, flightNumber, date string, outbound bool) (string, bool)
}

func (m *mockFlightResolver) ScheduledTime(ctx context.Context, flightNumber, date string, outbound bool) (string, bool) {
	return m.scheduledTime(ctx, flightNumber, date, outbound)
}

var _ service.FlightResolver = (*mockFlightResolver)(nil)

func flightTrip() domain.Trip {
	trip := tripFixture()
	trip.Flight = &domain.Flight{Out: "CX520", In: "CX521"}
	trip.CheckInDate = "2026-04-01"
	trip.CheckOutDate = "2026-04-05"
	return trip
}

// ---- NeedsRefresh ----------------------------------------------------------

func TestFlightService_NeedsRefresh(t *testing.T) {
	svc := service.NewFlightService(&mockTripStore{}, &mockFlightResolver{})

	tests := []struct {
		name string
		trip func() domain.Trip
		want bool
	}{
		{"no flight block", tripFixture, false},
		{"unresolved legs", flightTrip, true},
		{"all times resolved", func() domain.Trip {
			trip := flightTrip()
			trip.Flight.OutTime = "09:30"
			trip.Flight.InTime = "18:05"
			return trip
		}, false},
		{"number without date", func() domain.Trip {
			trip := flightTrip()
			trip.CheckInDate = ""
			trip.CheckOutDate = ""
			return trip
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.NeedsRefresh(tt.trip()))
		})
	}
}

// ---- RefreshTimes ----------------------------------------------------------

func TestFlightService_RefreshTimes(t *testing.T) {
	trip := flightTrip()
	var patches []store.Patch
	st := patchRecorder(trip, &patches)
	resolver := &mockFlightResolver{
		scheduledTime: func(_ context.Context, flightNumber, _ string, outbound bool) (string, bool) {
			if outbound {
				require.Equal(t, "CX520", flightNumber)
				return "09:30", true
			}
			require.Equal(t, "CX521", flightNumber)
			return "18:05", true
		},
	}
	svc := service.NewFlightService(st, resolver)

	err := svc.RefreshTimes(context.Background(), trip.ID)

	require.NoError(t, err)
	require.Len(t, patches, 2)
	out, ok := patches[0]["flight"].(domain.Flight)
	require.True(t, ok)
	assert.Equal(t, "09:30", out.OutTime)
	in, ok := patches[1]["flight"].(domain.Flight)
	require.True(t, ok)
	assert.Equal(t, "18:05", in.InTime)
}

func TestFlightService_RefreshTimes_LookupFailureLeavesTripAlone(t *testing.T) {
	trip := flightTrip()
	var patches []store.Patch
	resolver := &mockFlightResolver{
		scheduledTime: func(_ context.Context, _, _ string, _ bool) (string, bool) { return "", false },
	}
	svc := service.NewFlightService(patchRecorder(trip, &patches), resolver)

	err := svc.RefreshTimes(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.Empty(t, patches)
}

func TestFlightService_RefreshTimes_SkipsLegsWithoutIdentity(t *testing.T) {
	trip := flightTrip()
	trip.Flight.In = ""
	var patches []store.Patch
	var lookups int
	resolver := &mockFlightResolver{
		scheduledTime: func(_ context.Context, _, _ string, _ bool) (string, bool) {
			lookups++
			return "09:30", true
		},
	}
	svc := service.NewFlightService(patchRecorder(trip, &patches), resolver)

	err := svc.RefreshTimes(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, lookups, "a leg without a number never hits the resolver")
	assert.Len(t, patches, 1)
}

func TestFlightService_RefreshTimes_StaleResultDiscarded(t *testing.T) {
	// The user changes the outbound flight number while the lookup for the
	// old number is still in flight. The old result must not be applied.
	trip := flightTrip()
	var patches []store.Patch
	reads := 0
	st := &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			reads++
			if reads == 1 {
				return trip, nil
			}
			changed := trip
			changed.Flight = &domain.Flight{Out: "CX504", In: trip.Flight.In}
			return changed, nil
		},
		applyPatch: func(_ context.Context, _ uuid.UUID, p store.Patch) error {
			patches = append(patches, p)
			return nil
		},
	}
	resolver := &mockFlightResolver{
		scheduledTime: func(_ context.Context, flightNumber, _ string, outbound bool) (string, bool) {
			if outbound {
				return "09:30", true
			}
			return "", false
		},
	}
	svc := service.NewFlightService(st, resolver)

	err := svc.RefreshTimes(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.Empty(t, patches, "a stale resolution must be discarded, not applied")
}

func TestFlightService_RefreshTimes_TripNotFound(t *testing.T) {
	st := &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewFlightService(st, &mockFlightResolver{})

	err := svc.RefreshTimes(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
