// Package handler implements the HTTP handlers for the Ryokou API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, member.go, bill.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, creatorEmail string) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByMember(ctx context.Context, email string) ([]domain.Trip, error)
	Watch(ctx context.Context, email string) (<-chan []domain.Trip, error)
	UpdateInfo(ctx context.Context, id uuid.UUID, update service.InfoUpdate) (domain.Trip, bool, error)
	AddDay(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	AddEvent(ctx context.Context, id uuid.UUID, dayIdx int, ev domain.Event) (domain.Trip, error)
}

// MemberServicer defines the member directory operations the handlers depend on.
type MemberServicer interface {
	Add(ctx context.Context, tripID uuid.UUID, email string) (domain.Trip, error)
	Rename(ctx context.Context, tripID uuid.UUID, email, name string) (domain.Trip, error)
}

// LedgerServicer defines the expense ledger operations the handlers depend on.
type LedgerServicer interface {
	AddBill(ctx context.Context, tripID uuid.UUID, bill domain.Bill) (domain.Trip, error)
	Settlements(ctx context.Context, tripID uuid.UUID) ([]domain.Settlement, error)
}

// CurrencyServicer defines the currency view the handlers depend on.
type CurrencyServicer interface {
	Overview(ctx context.Context, tripID uuid.UUID, amount float64, currency string) (service.Overview, error)
}

// FlightServicer triggers background flight-time resolution.
type FlightServicer interface {
	NeedsRefresh(trip domain.Trip) bool
	RefreshAsync(tripID uuid.UUID)
}

// Server holds every handler's dependencies. Wire it in main.go and mount
// Routes() on the router.
type Server struct {
	trips    TripServicer
	members  MemberServicer
	ledger   LedgerServicer
	currency CurrencyServicer
	flights  FlightServicer

	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, members MemberServicer, ledger LedgerServicer, currency CurrencyServicer, flights FlightServicer) *Server {
	return &Server{
		trips:    trips,
		members:  members,
		ledger:   ledger,
		currency: currency,
		flights:  flights,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			// Cross-origin policy is enforced by the CORS middleware on the
			// HTTP side; the upgrade itself accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes returns the API route tree. Identity and other cross-cutting
// middleware are mounted by the caller, outside this tree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.createTrip)
		r.Get("/", s.listTrips)
		r.Get("/watch", s.watchTrips)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.getTrip)
			r.Patch("/", s.updateTrip)
			r.Post("/days", s.addDay)
			r.Post("/days/{dayIdx}/events", s.addEvent)
			r.Post("/members", s.addMember)
			r.Put("/members/{email}", s.renameMember)
			r.Post("/bills", s.addBill)
			r.Get("/settlements", s.getSettlements)
			r.Get("/currency", s.getCurrency)
		})
	})

	return r
}

// tripIDFromRequest parses the {tripID} URL parameter.
func tripIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "tripID"))
}
