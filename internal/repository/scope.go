package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// scopeClause appends the ownership predicate for column unless the scope is
// privileged.
func scopeClause(scope models.Scope, column string, args []interface{}) (string, []interface{}) {
	if scope.Privileged {
		return "", args
	}
	args = append(args, scope.AccountID)
	return fmt.Sprintf(" AND %s = $%d", column, len(args)), args
}

type statsRow struct {
	Count int64           `db:"count"`
	Avg   sql.NullFloat64 `db:"avg"`
	Max   sql.NullInt64   `db:"max"`
	Min   sql.NullInt64   `db:"min"`
}

func (r statsRow) toModel() *models.ResourceStats {
	stats := &models.ResourceStats{Count: r.Count}
	if r.Avg.Valid {
		avg := r.Avg.Float64
		stats.Avg = &avg
	}
	if r.Max.Valid {
		max := r.Max.Int64
		stats.Max = &max
	}
	if r.Min.Valid {
		min := r.Min.Int64
		stats.Min = &min
	}
	return stats
}

func selectStats(ctx context.Context, db *sqlx.DB, table string, scope models.Scope) (*models.ResourceStats, error) {
	clause, args := scopeClause(scope, "user_id", nil)
	query := fmt.Sprintf("SELECT COUNT(id) AS count, AVG(id)::float8 AS avg, MAX(id) AS max, MIN(id) AS min FROM %s WHERE 1=1%s", table, clause)
	var row statsRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("stats %s: %w", table, err)
	}
	return row.toModel(), nil
}

func deleteScoped(ctx context.Context, db *sqlx.DB, table string, scope models.Scope, id int64) error {
	clause, args := scopeClause(scope, "user_id", []interface{}{id})
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1%s", table, clause)
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
