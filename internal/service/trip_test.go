package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/service"
	"github.com/ryokou-app/backend/internal/store"
)

// mockTripStore is a hand-written test double for store.TripStore.
// Each method is a function field — set only the ones your test needs.
type mockTripStore struct {
	create        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByMember  func(ctx context.Context, email string) ([]domain.Trip, error)
	applyPatch    func(ctx context.Context, id uuid.UUID, patch store.Patch) error
	watchByMember func(ctx context.Context, email string) (<-chan []domain.Trip, error)
}

func (m *mockTripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripStore) ListByMember(ctx context.Context, email string) ([]domain.Trip, error) {
	return m.listByMember(ctx, email)
}
func (m *mockTripStore) ApplyPatch(ctx context.Context, id uuid.UUID, patch store.Patch) error {
	return m.applyPatch(ctx, id, patch)
}
func (m *mockTripStore) WatchByMember(ctx context.Context, email string) (<-chan []domain.Trip, error) {
	return m.watchByMember(ctx, email)
}

// compile-time check: mockTripStore must satisfy store.TripStore.
var _ store.TripStore = (*mockTripStore)(nil)

// ---- helpers ---------------------------------------------------------------

func tripFixture() domain.Trip {
	trip := domain.NewTrip("a@x.com")
	trip.Title = "Kansai Spring"
	trip.City = "Osaka, Japan"
	return trip
}

// patchRecorder returns a store whose GetByID serves the given trip and
// whose ApplyPatch records every patch it receives.
func patchRecorder(trip domain.Trip, patches *[]store.Patch) *mockTripStore {
	return &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return trip, nil
		},
		applyPatch: func(_ context.Context, _ uuid.UUID, p store.Patch) error {
			*patches = append(*patches, p)
			return nil
		},
	}
}

// ---- Create ----------------------------------------------------------------

func TestTripService_Create_DefaultSkeleton(t *testing.T) {
	st := &mockTripStore{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			return trip, nil
		},
	}
	svc := service.NewTripService(st)

	got, err := svc.Create(context.Background(), "Creator@X.com")

	require.NoError(t, err)
	assert.Equal(t, "New Journey", got.Title)
	assert.Equal(t, []string{"creator@x.com"}, got.MemberEmails)
}

func TestTripService_Create_InvalidEmail(t *testing.T) {
	svc := service.NewTripService(&mockTripStore{})

	_, err := svc.Create(context.Background(), "not-an-email")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_StoreError(t *testing.T) {
	storeErr := errors.New("db exploded")
	st := &mockTripStore{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, storeErr
		},
	}
	svc := service.NewTripService(st)

	_, err := svc.Create(context.Background(), "a@x.com")

	// The service should propagate store errors unchanged.
	assert.ErrorIs(t, err, storeErr)
}

// ---- GetByID / ListByMember ------------------------------------------------

func TestTripService_GetByID_NotFound(t *testing.T) {
	st := &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(st)

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_ListByMember_Empty(t *testing.T) {
	st := &mockTripStore{
		listByMember: func(_ context.Context, _ string) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(st)

	got, err := svc.ListByMember(context.Background(), "a@x.com")

	require.NoError(t, err)
	// Should return an empty slice, not nil — callers can safely range over it.
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- UpdateInfo ------------------------------------------------------------

func TestTripService_UpdateInfo_PatchesOnlySetFields(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	title := "Renamed"
	_, flightChanged, err := svc.UpdateInfo(context.Background(), trip.ID, service.InfoUpdate{Title: &title})

	require.NoError(t, err)
	assert.False(t, flightChanged)
	require.Len(t, patches, 1)
	assert.Equal(t, store.Patch{"title": "Renamed"}, patches[0])
}

func TestTripService_UpdateInfo_NoFields_NoPatch(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	got, flightChanged, err := svc.UpdateInfo(context.Background(), trip.ID, service.InfoUpdate{})

	require.NoError(t, err)
	assert.False(t, flightChanged)
	assert.Empty(t, patches)
	assert.Equal(t, trip.Title, got.Title)
}

func TestTripService_UpdateInfo_FlightNumberDropsResolvedTimes(t *testing.T) {
	trip := tripFixture()
	trip.Flight = &domain.Flight{Out: "CX520", OutTime: "09:30", In: "CX521", InTime: "18:05"}
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	out := "CX504"
	_, flightChanged, err := svc.UpdateInfo(context.Background(), trip.ID, service.InfoUpdate{FlightOut: &out})

	require.NoError(t, err)
	assert.True(t, flightChanged, "changing a flight number must trigger a time refresh")
	require.Len(t, patches, 1)

	flight, ok := patches[0]["flight"].(domain.Flight)
	require.True(t, ok, "patch should carry a whole flight block")
	assert.Equal(t, "CX504", flight.Out)
	assert.Equal(t, "CX521", flight.In, "the other leg's number survives")
	assert.Empty(t, flight.OutTime, "resolved times belong to the old identity")
	assert.Empty(t, flight.InTime)
}

func TestTripService_UpdateInfo_CheckInDateMarksFlightChanged(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	date := "2026-04-01"
	_, flightChanged, err := svc.UpdateInfo(context.Background(), trip.ID, service.InfoUpdate{CheckInDate: &date})

	require.NoError(t, err)
	assert.True(t, flightChanged)
}

func TestTripService_UpdateInfo_HotelMergesWithCurrent(t *testing.T) {
	trip := tripFixture()
	trip.Hotel = &domain.Hotel{Name: "Old Inn", Address: "1 Temple Rd"}
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	name := "New Inn"
	_, _, err := svc.UpdateInfo(context.Background(), trip.ID, service.InfoUpdate{HotelName: &name})

	require.NoError(t, err)
	require.Len(t, patches, 1)
	hotel, ok := patches[0]["hotel"].(domain.Hotel)
	require.True(t, ok)
	assert.Equal(t, "New Inn", hotel.Name)
	assert.Equal(t, "1 Temple Rd", hotel.Address)
}

func TestTripService_UpdateInfo_NotFound(t *testing.T) {
	st := &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(st)

	title := "x"
	_, _, err := svc.UpdateInfo(context.Background(), uuid.New(), service.InfoUpdate{Title: &title})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- AddDay / AddEvent -----------------------------------------------------

func TestTripService_AddDay(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	got, err := svc.AddDay(context.Background(), trip.ID)

	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Day 1", got.Days[0].Day)
	require.Len(t, patches, 1)
	assert.Contains(t, patches[0], "days")
}

func TestTripService_AddEvent_DayOutOfRange(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewTripService(patchRecorder(trip, &patches))

	_, err := svc.AddEvent(context.Background(), trip.ID, 3, domain.Event{Title: "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, patches, "a rejected event must not write anything")
}
