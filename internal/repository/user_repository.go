package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns an account by its login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, is_superuser, created_at, updated_at FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns an account by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, username, password_hash, is_superuser, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// List returns every account as id and username ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]models.AccountSummary, error) {
	const query = `SELECT id, username FROM users ORDER BY id`
	accounts := []models.AccountSummary{}
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return accounts, nil
}

// Create inserts a new account and fills the generated columns.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (username, password_hash, is_superuser) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.IsSuperuser)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateCredentials replaces the password hash and privilege flag of an account.
func (r *UserRepository) UpdateCredentials(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET password_hash = $2, is_superuser = $3, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, user.ID, user.PasswordHash, user.IsSuperuser)
	if err != nil {
		return fmt.Errorf("update user credentials: %w", err)
	}
	return expectAffected(res)
}
