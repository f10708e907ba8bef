package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns the rooms visible to scope ordered by id.
func (r *RoomRepository) List(ctx context.Context, scope models.Scope) ([]models.Room, error) {
	clause, args := scopeClause(scope, "user_id", nil)
	query := "SELECT id, number, user_id FROM rooms WHERE 1=1" + clause + " ORDER BY id"
	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns a visible room or sql.ErrNoRows.
func (r *RoomRepository) FindByID(ctx context.Context, scope models.Scope, id int64) (*models.Room, error) {
	clause, args := scopeClause(scope, "user_id", []interface{}{id})
	query := "SELECT id, number, user_id FROM rooms WHERE id = $1" + clause
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}

// Create inserts a room owned by ownerID.
func (r *RoomRepository) Create(ctx context.Context, ownerID int64, room *models.Room) error {
	room.OwnerID = ownerID
	const query = `INSERT INTO rooms (number, user_id) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, room.Number, room.OwnerID).Scan(&room.ID); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update rewrites the room number.
func (r *RoomRepository) Update(ctx context.Context, scope models.Scope, room *models.Room) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{room.Number, room.ID})
	query := "UPDATE rooms SET number = $1 WHERE id = $2" + clause
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a visible room. Students in it are unassigned.
func (r *RoomRepository) Delete(ctx context.Context, scope models.Scope, id int64) error {
	return deleteScoped(ctx, r.db, "rooms", scope, id)
}

// Stats aggregates the ids of visible rooms.
func (r *RoomRepository) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	return selectStats(ctx, r.db, "rooms", scope)
}
