package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

const repairColumns = `rr.id, rr.date, rr.description, rr.status, rr.room_id, rr.staff_id, rr.user_id,
        r.number AS room_number, sf.name AS staff_name, sf.post AS staff_post
        FROM repair_requests rr JOIN rooms r ON r.id = rr.room_id JOIN staff sf ON sf.id = rr.staff_id`

type repairRow struct {
	models.RepairRequest
	RoomNumber string `db:"room_number"`
	StaffName  string `db:"staff_name"`
	StaffPost  string `db:"staff_post"`
}

func (row repairRow) toModel() models.RepairRequest {
	repair := row.RepairRequest
	repair.Room = &models.RoomRef{ID: repair.RoomID, Number: row.RoomNumber}
	repair.Staff = &models.StaffRef{ID: repair.StaffID, Name: row.StaffName, Post: row.StaffPost}
	return repair
}

// RepairRequestRepository manages persistence for repair requests.
type RepairRequestRepository struct {
	db *sqlx.DB
}

// NewRepairRequestRepository constructs a repair request repository.
func NewRepairRequestRepository(db *sqlx.DB) *RepairRequestRepository {
	return &RepairRequestRepository{db: db}
}

// List returns visible repair requests with room and staff resolved.
func (r *RepairRequestRepository) List(ctx context.Context, scope models.Scope) ([]models.RepairRequest, error) {
	clause, args := scopeClause(scope, "rr.user_id", nil)
	query := "SELECT " + repairColumns + " WHERE 1=1" + clause + " ORDER BY rr.id"
	var rows []repairRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list repair requests: %w", err)
	}
	repairs := make([]models.RepairRequest, 0, len(rows))
	for _, row := range rows {
		repairs = append(repairs, row.toModel())
	}
	return repairs, nil
}

// FindByID returns a visible repair request or sql.ErrNoRows.
func (r *RepairRequestRepository) FindByID(ctx context.Context, scope models.Scope, id int64) (*models.RepairRequest, error) {
	clause, args := scopeClause(scope, "rr.user_id", []interface{}{id})
	query := "SELECT " + repairColumns + " WHERE rr.id = $1" + clause
	var row repairRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find repair request: %w", err)
	}
	repair := row.toModel()
	return &repair, nil
}

// Create inserts a repair request owned by ownerID.
func (r *RepairRequestRepository) Create(ctx context.Context, ownerID int64, repair *models.RepairRequest) error {
	repair.OwnerID = ownerID
	const query = `INSERT INTO repair_requests (date, description, status, room_id, staff_id, user_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, repair.Date, repair.Description, repair.Status, repair.RoomID, repair.StaffID, repair.OwnerID)
	if err := row.Scan(&repair.ID); err != nil {
		return fmt.Errorf("create repair request: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of the repair request.
func (r *RepairRequestRepository) Update(ctx context.Context, scope models.Scope, repair *models.RepairRequest) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{repair.Date, repair.Description, repair.Status, repair.RoomID, repair.StaffID, repair.ID})
	query := "UPDATE repair_requests SET date = $1, description = $2, status = $3, room_id = $4, staff_id = $5 WHERE id = $6" + clause
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update repair request: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a visible repair request.
func (r *RepairRequestRepository) Delete(ctx context.Context, scope models.Scope, id int64) error {
	return deleteScoped(ctx, r.db, "repair_requests", scope, id)
}

// Stats aggregates the ids of visible repair requests.
func (r *RepairRequestRepository) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	return selectStats(ctx, r.db, "repair_requests", scope)
}
