package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/store"
)

// RateSource supplies the latest exchange rates keyed as
// foreign-units-per-HKD. Implemented by the rates package client.
type RateSource interface {
	Latest(ctx context.Context) (map[string]float64, error)
}

// CurrencyService assembles the currency view for a trip: which currencies
// matter for the destination, their current rates, and an optional one-off
// conversion into the base currency.
type CurrencyService struct {
	store store.TripStore
	rates RateSource
}

// NewCurrencyService constructs a CurrencyService.
func NewCurrencyService(s store.TripStore, rates RateSource) *CurrencyService {
	return &CurrencyService{store: s, rates: rates}
}

// Conversion is one amount converted into the base currency.
type Conversion struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Converted float64 `json:"converted"`
}

// Overview is the currency view for one trip. Rates is nil when the rate
// source is unavailable — the currency list still renders, the numbers
// don't.
type Overview struct {
	Base       string             `json:"base"`
	Currencies []string           `json:"currencies"`
	Rates      map[string]float64 `json:"rates,omitempty"`
	Conversion *Conversion        `json:"conversion,omitempty"`
}

// Overview returns the currency view for the trip. When currency is
// non-empty, the overview also carries amount converted into the base
// currency. A failing rate source degrades the view (no rates, no
// conversion) instead of failing the request.
// Returns domain.ErrNotFound for an unknown trip.
func (s *CurrencyService) Overview(ctx context.Context, tripID uuid.UUID, amount float64, currency string) (Overview, error) {
	trip, err := s.store.GetByID(ctx, tripID)
	if err != nil {
		return Overview{}, fmt.Errorf("service.CurrencyService.Overview: %w", err)
	}

	overview := Overview{
		Base:       domain.BaseCurrency,
		Currencies: domain.RelevantCurrencies(trip.City),
	}

	rates, err := s.rates.Latest(ctx)
	if err != nil {
		slog.Warn("exchange rates unavailable", "trip_id", tripID, "error", err)
		return overview, nil
	}

	// Only ship the rates the trip actually needs, not the whole table.
	relevant := make(map[string]float64, len(overview.Currencies))
	for _, code := range overview.Currencies {
		if rate, ok := rates[code]; ok {
			relevant[code] = rate
		}
	}
	overview.Rates = relevant

	if currency != "" {
		overview.Conversion = &Conversion{
			Amount:    amount,
			Currency:  currency,
			Converted: domain.Convert(amount, currency, rates),
		}
	}
	return overview, nil
}
