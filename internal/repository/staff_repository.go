package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// StaffRepository manages persistence for staff members.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a staff repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns the staff visible to scope.
func (r *StaffRepository) List(ctx context.Context, scope models.Scope) ([]models.Staff, error) {
	clause, args := scopeClause(scope, "user_id", nil)
	query := "SELECT id, name, post, user_id FROM staff WHERE 1=1" + clause + " ORDER BY id"
	staff := []models.Staff{}
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// FindByID returns a visible staff member or sql.ErrNoRows.
func (r *StaffRepository) FindByID(ctx context.Context, scope models.Scope, id int64) (*models.Staff, error) {
	clause, args := scopeClause(scope, "user_id", []interface{}{id})
	query := "SELECT id, name, post, user_id FROM staff WHERE id = $1" + clause
	var member models.Staff
	if err := r.db.GetContext(ctx, &member, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return &member, nil
}

// Create inserts a staff member owned by ownerID.
func (r *StaffRepository) Create(ctx context.Context, ownerID int64, member *models.Staff) error {
	member.OwnerID = ownerID
	const query = `INSERT INTO staff (name, post, user_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, member.Name, member.Post, member.OwnerID).Scan(&member.ID); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update rewrites name and post.
func (r *StaffRepository) Update(ctx context.Context, scope models.Scope, member *models.Staff) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{member.Name, member.Post, member.ID})
	query := "UPDATE staff SET name = $1, post = $2 WHERE id = $3" + clause
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a visible staff member.
func (r *StaffRepository) Delete(ctx context.Context, scope models.Scope, id int64) error {
	return deleteScoped(ctx, r.db, "staff", scope, id)
}

// Stats aggregates the ids of visible staff.
func (r *StaffRepository) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	return selectStats(ctx, r.db, "staff", scope)
}
