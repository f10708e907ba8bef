package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

const dutyColumns = `d.id, d.date, d.student_id, d.user_id, st.name AS student_name, st.group_name AS student_group
        FROM duty_schedules d JOIN students st ON st.id = d.student_id`

type dutyRow struct {
	models.DutySchedule
	StudentName  string `db:"student_name"`
	StudentGroup string `db:"student_group"`
}

func (row dutyRow) toModel() models.DutySchedule {
	duty := row.DutySchedule
	duty.Student = &models.StudentRef{ID: duty.StudentID, Name: row.StudentName, Group: row.StudentGroup}
	return duty
}

// DutyScheduleRepository manages persistence for duty assignments.
type DutyScheduleRepository struct {
	db *sqlx.DB
}

// NewDutyScheduleRepository constructs a duty schedule repository.
func NewDutyScheduleRepository(db *sqlx.DB) *DutyScheduleRepository {
	return &DutyScheduleRepository{db: db}
}

// List returns visible duty schedules with their students resolved.
func (r *DutyScheduleRepository) List(ctx context.Context, scope models.Scope) ([]models.DutySchedule, error) {
	clause, args := scopeClause(scope, "d.user_id", nil)
	query := "SELECT " + dutyColumns + " WHERE 1=1" + clause + " ORDER BY d.id"
	var rows []dutyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list duty schedules: %w", err)
	}
	duties := make([]models.DutySchedule, 0, len(rows))
	for _, row := range rows {
		duties = append(duties, row.toModel())
	}
	return duties, nil
}

// FindByID returns a visible duty schedule or sql.ErrNoRows.
func (r *DutyScheduleRepository) FindByID(ctx context.Context, scope models.Scope, id int64) (*models.DutySchedule, error) {
	clause, args := scopeClause(scope, "d.user_id", []interface{}{id})
	query := "SELECT " + dutyColumns + " WHERE d.id = $1" + clause
	var row dutyRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find duty schedule: %w", err)
	}
	duty := row.toModel()
	return &duty, nil
}

// Create inserts a duty schedule owned by ownerID.
func (r *DutyScheduleRepository) Create(ctx context.Context, ownerID int64, duty *models.DutySchedule) error {
	duty.OwnerID = ownerID
	const query = `INSERT INTO duty_schedules (date, student_id, user_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, duty.Date, duty.StudentID, duty.OwnerID).Scan(&duty.ID); err != nil {
		return fmt.Errorf("create duty schedule: %w", err)
	}
	return nil
}

// Update rewrites date and student.
func (r *DutyScheduleRepository) Update(ctx context.Context, scope models.Scope, duty *models.DutySchedule) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{duty.Date, duty.StudentID, duty.ID})
	query := "UPDATE duty_schedules SET date = $1, student_id = $2 WHERE id = $3" + clause
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update duty schedule: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a visible duty schedule.
func (r *DutyScheduleRepository) Delete(ctx context.Context, scope models.Scope, id int64) error {
	return deleteScoped(ctx, r.db, "duty_schedules", scope, id)
}

// Stats aggregates the ids of visible duty schedules.
func (r *DutyScheduleRepository) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	return selectStats(ctx, r.db, "duty_schedules", scope)
}
