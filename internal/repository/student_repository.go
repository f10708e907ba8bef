package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

const studentColumns = `s.id, s.name, s.group_name, s.room_id, s.user_id, r.number AS room_number
        FROM students s LEFT JOIN rooms r ON r.id = s.room_id`

type studentRow struct {
	models.Student
	RoomNumber sql.NullString `db:"room_number"`
}

func (row studentRow) toModel() models.Student {
	student := row.Student
	if student.RoomID != nil && row.RoomNumber.Valid {
		student.Room = &models.RoomRef{ID: *student.RoomID, Number: row.RoomNumber.String}
	}
	return student
}

// StudentRepository manages persistence for dormitory residents.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns the students visible to scope with their rooms resolved.
func (r *StudentRepository) List(ctx context.Context, scope models.Scope) ([]models.Student, error) {
	clause, args := scopeClause(scope, "s.user_id", nil)
	query := "SELECT " + studentColumns + " WHERE 1=1" + clause + " ORDER BY s.id"
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, nil
}

// FindByID returns a visible student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, scope models.Scope, id int64) (*models.Student, error) {
	clause, args := scopeClause(scope, "s.user_id", []interface{}{id})
	query := "SELECT " + studentColumns + " WHERE s.id = $1" + clause
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	student := row.toModel()
	return &student, nil
}

// Create inserts a student owned by ownerID.
func (r *StudentRepository) Create(ctx context.Context, ownerID int64, student *models.Student) error {
	student.OwnerID = ownerID
	const query = `INSERT INTO students (name, group_name, room_id, user_id) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, student.Name, student.Group, student.RoomID, student.OwnerID).Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites name, group and room assignment.
func (r *StudentRepository) Update(ctx context.Context, scope models.Scope, student *models.Student) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{student.Name, student.Group, student.RoomID, student.ID})
	query := "UPDATE students SET name = $1, group_name = $2, room_id = $3 WHERE id = $4" + clause
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a visible student.
func (r *StudentRepository) Delete(ctx context.Context, scope models.Scope, id int64) error {
	return deleteScoped(ctx, r.db, "students", scope, id)
}

// Stats aggregates the ids of visible students.
func (r *StudentRepository) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	return selectStats(ctx, r.db, "students", scope)
}

// ListForExport returns the roster rows for file exports ordered by id.
func (r *StudentRepository) ListForExport(ctx context.Context, scope models.Scope) ([]models.StudentExportRow, error) {
	clause, args := scopeClause(scope, "s.user_id", nil)
	query := "SELECT s.id, s.name, s.group_name, r.number AS room_number FROM students s LEFT JOIN rooms r ON r.id = s.room_id WHERE 1=1" + clause + " ORDER BY s.id"
	rows := []models.StudentExportRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list students for export: %w", err)
	}
	return rows, nil
}
