package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mydienst/internal/models"
)

// CreateUser inserts a staff account. The caller provides the bcrypt
// hash; plaintext passwords never reach this layer.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.Role, user.Email, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("user insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

// GetUserByUsername returns one account for login.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.queryUser(ctx,
		`SELECT id, username, password_hash, role, email, created_at FROM users WHERE username = ?`,
		username)
}

// GetUserByID returns one account.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.queryUser(ctx,
		`SELECT id, username, password_hash, role, email, created_at FROM users WHERE id = ?`,
		id)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	u := &models.User{}
	var email sql.NullString
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Email = email.String
	return u, nil
}

// ListUsers returns all staff accounts ordered by username.
func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, email, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		var email sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Email = email.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserUpdate carries a partial account update. Nil fields stay
// untouched; PasswordHash must already be hashed when set.
type UserUpdate struct {
	PasswordHash *string
	Role         *string
	Email        *string
}

// UpdateUser applies a partial update.
func (db *DB) UpdateUser(ctx context.Context, id int64, update UserUpdate) error {
	sets := []string{}
	args := []any{}
	if update.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}
	if update.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *update.Role)
	}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	result, err := db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if updated, _ := result.RowsAffected(); updated == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if deleted, _ := result.RowsAffected(); deleted == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountAdmins returns how many admin accounts exist; the startup seed
// uses it to decide whether to create the initial admin.
func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin).Scan(&n)
	return n, err
}
