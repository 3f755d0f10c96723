// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"myblog/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByUsername retrieves a user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, notFoundIfNoRows(err, "find user by username")
	}
	return u, nil
}

// FindByID retrieves a user by their UUID.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundIfNoRows(err, "find user by id")
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password. A taken username
// surfaces as a unique violation (see IsUniqueViolation).
func (s *UserStore) Create(ctx context.Context, in models.SignUpInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.Username, in.Email, in.FirstName, in.LastName, string(hash),
	))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the name and email fields of a user.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, in models.ProfileInput) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, email = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		in.FirstName, in.LastName, in.Email, id,
	))
	if err != nil {
		return nil, notFoundIfNoRows(err, "update profile")
	}
	return u, nil
}

// Delete removes a user by ID. Their posts go with them.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
