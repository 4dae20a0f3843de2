// Package store persists trips as JSON documents in Postgres and implements
// the collaborative-document contract the rest of the application is built
// on: list and subscribe by member email, and partial top-level-field
// updates with last-write-wins semantics. No business logic lives here —
// only SQL, JSON codec work, and the legacy-schema migration write-back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryokou-app/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Patch is a partial trip-document update: a set of top-level document
// fields to overwrite. Applying a patch replaces exactly those fields and
// leaves the rest of the document untouched (per-field last-write-wins —
// concurrent patches to different fields both survive, concurrent patches
// to the same field resolve to whichever lands last).
type Patch map[string]any

// TripStore defines the document-store operations for trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows services to be unit-tested with a mock.
type TripStore interface {
	// Create persists a new trip document under its pre-assigned ID.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves and normalizes a single trip document.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByMember returns all trips whose member-email set contains the
	// given email (lowercased before matching), most recently updated first.
	ListByMember(ctx context.Context, email string) ([]domain.Trip, error)

	// ApplyPatch overwrites the given top-level fields of a trip document.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	ApplyPatch(ctx context.Context, id uuid.UUID, patch Patch) error

	// WatchByMember streams trip-list snapshots for the given email: one on
	// subscribe, then one after every change to any trip document. Slow
	// receivers only ever see the newest snapshot — intermediate ones are
	// coalesced away. The channel closes when ctx is cancelled.
	WatchByMember(ctx context.Context, email string) (<-chan []domain.Trip, error)
}

// pgTripStore is the Postgres implementation of TripStore.
type pgTripStore struct {
	db   db
	pool *pgxpool.Pool // nil when constructed over a bare db; Watch needs it
}

// NewTripStore constructs a TripStore backed by a connection pool.
// WatchByMember acquires dedicated LISTEN connections from the pool.
func NewTripStore(pool *pgxpool.Pool) TripStore {
	return &pgTripStore{db: pool, pool: pool}
}

// NewTripStoreWithDB constructs a TripStore over a bare db connection.
// In tests pass a pgx.Tx for rollback isolation. WatchByMember is
// unavailable on a store built this way.
func NewTripStoreWithDB(db db) TripStore {
	return &pgTripStore{db: db}
}

// Create inserts the trip as a fresh document row.
func (s *pgTripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc, err := json.Marshal(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("store.TripStore.Create: encode: %w", err)
	}

	const q = `INSERT INTO trips (id, doc) VALUES (@id, @doc)`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"id": trip.ID, "doc": doc}); err != nil {
		return domain.Trip{}, fmt.Errorf("store.TripStore.Create: %w", err)
	}
	return trip, nil
}

// GetByID retrieves a trip document by primary key.
func (s *pgTripStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT id, doc FROM trips WHERE id = @id`

	row := s.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	trip, err := s.scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("store.TripStore.GetByID: %w", err)
	}
	return trip, nil
}

// ListByMember returns the trips the given email is a member of.
// The jsonb "?" existence operator matches string elements of the
// memberEmails array, served by the GIN index from the migrations.
func (s *pgTripStore) ListByMember(ctx context.Context, email string) ([]domain.Trip, error) {
	const q = `
		SELECT id, doc
		FROM trips
		WHERE doc->'memberEmails' ? @email
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"email": strings.ToLower(email)})
	if err != nil {
		return nil, fmt.Errorf("store.TripStore.ListByMember: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := s.scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("store.TripStore.ListByMember: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.TripStore.ListByMember: rows: %w", err)
	}

	return trips, nil
}

// ApplyPatch merges the patch into the document with jsonb concatenation,
// which overwrites exactly the named top-level fields. An empty patch is a
// no-op.
func (s *pgTripStore) ApplyPatch(ctx context.Context, id uuid.UUID, patch Patch) error {
	if len(patch) == 0 {
		return nil
	}

	encoded, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("store.TripStore.ApplyPatch: encode: %w", err)
	}

	const q = `
		UPDATE trips
		SET doc        = doc || @patch,
		    updated_at = now()
		WHERE id = @id`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "patch": encoded})
	if err != nil {
		return fmt.Errorf("store.TripStore.ApplyPatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store.TripStore.ApplyPatch: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a database row into a normalized domain.Trip. When the
// document still carries the legacy members shape, the upgraded shape is
// persisted back in the background; a failed write-back is logged and the
// next read simply migrates again.
func (s *pgTripStore) scanTrip(sc scanner) (domain.Trip, error) {
	var (
		id  pgtype.UUID
		doc []byte
	)
	if err := sc.Scan(&id, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	trip, migrated, err := domain.Normalize(uuid.UUID(id.Bytes), doc)
	if err != nil {
		return domain.Trip{}, err
	}
	if migrated {
		go s.persistMigration(trip)
	}
	return trip, nil
}

// persistMigration writes the upgraded members/memberEmails pair back to
// the store. Fire-and-forget: failure is logged, never retried, and never
// surfaced to the reader that triggered it.
func (s *pgTripStore) persistMigration(trip domain.Trip) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	patch := Patch{"members": trip.Members, "memberEmails": trip.MemberEmails}
	if err := s.ApplyPatch(ctx, trip.ID, patch); err != nil {
		slog.Error("trip schema migration write failed", "trip_id", trip.ID, "error", err)
	}
}
