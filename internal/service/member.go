package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/store"
)

// MemberService implements the member directory operations for a trip.
type MemberService struct {
	store store.TripStore
}

// NewMemberService constructs a MemberService backed by the provided TripStore.
func NewMemberService(s store.TripStore) *MemberService {
	return &MemberService{store: s}
}

// Add appends a new member to the trip. The members and memberEmails fields
// are always patched together — this is the only write path that grows
// either, which is what keeps the two arrays in lockstep.
// Returns domain.ErrNotFound for an unknown trip and domain.ErrValidation
// for an unusable or duplicate email.
func (s *MemberService) Add(ctx context.Context, tripID uuid.UUID, email string) (domain.Trip, error) {
	current, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}

	updated, err := domain.AddMember(current, email)
	if err != nil {
		return domain.Trip{}, err
	}

	patch := store.Patch{"members": updated.Members, "memberEmails": updated.MemberEmails}
	if err := s.store.ApplyPatch(ctx, tripID, patch); err != nil {
		return domain.Trip{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}
	return updated, nil
}

// Rename sets a member's display name (trimmed; empty unsets it and the
// member displays as their email again). Renaming an email that is not a
// member is a silent no-op, matching the editor's behaviour.
// Returns domain.ErrNotFound for an unknown trip.
func (s *MemberService) Rename(ctx context.Context, tripID uuid.UUID, email, name string) (domain.Trip, error) {
	current, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MemberService.Rename: %w", err)
	}

	updated := domain.RenameMember(current, email, name)
	if err := s.store.ApplyPatch(ctx, tripID, store.Patch{"members": updated.Members}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.MemberService.Rename: %w", err)
	}
	return updated, nil
}
