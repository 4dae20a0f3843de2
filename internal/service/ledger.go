package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/store"
)

// LedgerService implements the shared-expense ledger operations.
// Bills are append-only: the service exposes no update or delete.
type LedgerService struct {
	store store.TripStore
}

// NewLedgerService constructs a LedgerService backed by the provided TripStore.
func NewLedgerService(s store.TripStore) *LedgerService {
	return &LedgerService{store: s}
}

// AddBill validates the bill and appends it to the trip's ledger.
// Returns domain.ErrNotFound for an unknown trip and domain.ErrValidation
// for a bill that fails the ledger rules; a rejected bill changes nothing.
func (s *LedgerService) AddBill(ctx context.Context, tripID uuid.UUID, bill domain.Bill) (domain.Trip, error) {
	current, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.LedgerService.AddBill: %w", err)
	}

	updated, err := domain.AddBill(current, bill)
	if err != nil {
		return domain.Trip{}, err
	}

	if err := s.store.ApplyPatch(ctx, tripID, store.Patch{"bills": updated.Bills}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.LedgerService.AddBill: %w", err)
	}
	return updated, nil
}

// Settlements returns the per-member payment instructions for every bill on
// the trip, with display names resolved. Always returns a non-nil slice.
// Returns domain.ErrNotFound for an unknown trip.
func (s *LedgerService) Settlements(ctx context.Context, tripID uuid.UUID) ([]domain.Settlement, error) {
	trip, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.LedgerService.Settlements: %w", err)
	}
	return trip.Settlements(), nil
}
