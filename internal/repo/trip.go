// Package repo contains all database access logic for the trip planner.
// No business logic lives here, only SQL and type mapping. Every query is
// scoped by owner so a row-level policy in the database is a second line of
// defense, not the only one.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trips.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with the
	// DB-generated id and timestamps populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns the owner's trip. Returns domain.ErrNotFound if no trip
	// with that id belongs to ownerID.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of the owner's trips, most recent start date
	// first, plus the owner's total trip count.
	ListPaged(ctx context.Context, ownerID uuid.UUID, params domain.PaginationParams) ([]domain.Trip, int64, error)

	// Delete removes the owner's trip. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// OwnerOf returns the user_id of a trip regardless of caller.
	// Returns domain.ErrNotFound if the trip does not exist.
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// SaveItinerary replaces ai_itinerary wholesale and sets status, matching
	// on both id and owner. Returns domain.ErrPersistence when no row matched.
	SaveItinerary(ctx context.Context, id, ownerID uuid.UUID, doc any, status domain.TripStatus) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, user_id, title, destination, start_date, end_date, travelers,
		budget, preferences, status, ai_itinerary, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (user_id, title, destination, start_date, end_date, travelers, budget, preferences, status)
		VALUES (@user_id, @title, @destination, @start_date, @end_date, @travelers, @budget, @preferences, @status)
		RETURNING ` + tripColumns

	prefs := trip.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	args := pgx.NamedArgs{
		"user_id":     trip.UserID,
		"title":       trip.Title,
		"destination": trip.Destination,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
		"travelers":   trip.Travelers,
		"budget":      trip.Budget, // nil becomes NULL
		"preferences": prefs,
		"status":      string(trip.Status),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an owner's trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id AND user_id = @user_id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": ownerID}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns a page of the owner's trips and the total count.
func (r *pgTripRepo) ListPaged(ctx context.Context, ownerID uuid.UUID, params domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	const countQ = `SELECT count(*) FROM trips WHERE user_id = @user_id`
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": ownerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = @user_id
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": ownerID,
		"limit":   params.Limit,
		"offset":  params.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	return trips, total, nil
}

// Delete removes an owner's trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// OwnerOf returns the owning user id of a trip.
func (r *pgTripRepo) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT user_id FROM trips WHERE id = @id`

	var owner pgtype.UUID
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("repo.TripRepo.OwnerOf: %w", domain.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("repo.TripRepo.OwnerOf: %w", err)
	}
	return uuid.UUID(owner.Bytes), nil
}

// SaveItinerary overwrites the itinerary document and status of an owner's trip.
func (r *pgTripRepo) SaveItinerary(ctx context.Context, id, ownerID uuid.UUID, doc any, status domain.TripStatus) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SaveItinerary: %w: encode document: %w", domain.ErrPersistence, err)
	}

	const q = `
		UPDATE trips
		SET ai_itinerary = @doc,
		    status       = @status,
		    updated_at   = now()
		WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"doc":     payload,
		"status":  string(status),
		"id":      id,
		"user_id": ownerID,
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SaveItinerary: %w: %w", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.SaveItinerary: %w: no trip %s for owner", domain.ErrPersistence, id)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id, owner pgtype.UUID
		start     pgtype.Date
		end       pgtype.Date
		status    string
		itinerary []byte
	)

	err := s.Scan(&id, &owner, &t.Title, &t.Destination, &start, &end, &t.Travelers,
		&t.Budget, &t.Preferences, &status, &itinerary, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(owner.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Status = domain.TripStatus(status)
	if itinerary != nil {
		t.AIItinerary = json.RawMessage(itinerary)
	}
	if t.Preferences == nil {
		t.Preferences = []string{}
	}
	return t, nil
}
