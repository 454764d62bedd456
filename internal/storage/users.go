package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/tally/internal/model"
)

// SaveUsers upserts a batch of users.
func (s *SQLiteStorage) SaveUsers(ctx context.Context, users []model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, active, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			role = excluded.role,
			active = excluded.active,
			last_login = excluded.last_login`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range users {
		u := &users[i]
		if u.ID == "" {
			return fmt.Errorf("user at index %d: %w: missing ID", i, ErrNilParameter)
		}
		var lastLogin any
		if !u.LastLogin.IsZero() {
			lastLogin = u.LastLogin
		}
		if _, err := stmt.ExecContext(ctx, u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.Active, lastLogin); err != nil {
			return fmt.Errorf("failed to save user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetUsers returns all cached users ordered by name.
func (s *SQLiteStorage) GetUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, role, active, last_login
		FROM users
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &u.Active, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = model.Role(role)
		if lastLogin.Valid {
			u.LastLogin = lastLogin.Time
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
