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

// ---- Add -------------------------------------------------------------------

func TestMemberService_Add(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewMemberService(patchRecorder(trip, &patches))

	got, err := svc.Add(context.Background(), trip.ID, "B@X.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got.MemberEmails)

	// Both member fields must travel in the same patch.
	require.Len(t, patches, 1)
	assert.Contains(t, patches[0], "members")
	assert.Contains(t, patches[0], "memberEmails")
}

func TestMemberService_Add_Duplicate(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewMemberService(patchRecorder(trip, &patches))

	_, err := svc.Add(context.Background(), trip.ID, "A@X.com")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, patches, "a rejected member must not write anything")
}

func TestMemberService_Add_TripNotFound(t *testing.T) {
	st := &mockTripStore{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewMemberService(st)

	_, err := svc.Add(context.Background(), uuid.New(), "b@x.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Rename ----------------------------------------------------------------

func TestMemberService_Rename(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewMemberService(patchRecorder(trip, &patches))

	got, err := svc.Rename(context.Background(), trip.ID, "a@x.com", "  Alice  ")

	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName("a@x.com"))

	// Renaming touches members only — emails never change.
	require.Len(t, patches, 1)
	assert.Contains(t, patches[0], "members")
	assert.NotContains(t, patches[0], "memberEmails")
}

func TestMemberService_Rename_UnknownEmailIsNoOp(t *testing.T) {
	trip := tripFixture()
	var patches []store.Patch
	svc := service.NewMemberService(patchRecorder(trip, &patches))

	got, err := svc.Rename(context.Background(), trip.ID, "ghost@x.com", "Ghost")

	require.NoError(t, err)
	assert.Equal(t, trip.Members, got.Members)
}
