// Package user provides the SQL repository for account records.
package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/user"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/oklog/ulid/v2"
)

// Repository handles user persistence.
type Repository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewRepository creates a user repository over an open database handle.
func NewRepository(db *sql.DB, logger *logging.ChanneledLogger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create inserts a new account, assigning a ULID id.
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	prefs := "{}"
	if u.Preferences != nil {
		data, err := json.Marshal(u.Preferences)
		if err != nil {
			return fmt.Errorf("failed to marshal user preferences: %w", err)
		}
		prefs = string(data)
	}

	query := `INSERT INTO users (id, email, password_hash, first_name, preferences, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.FirstName, prefs, u.CreatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to create user", "error", err.Error(), "email", u.Email)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, u.ID)
	}
	return nil
}

// FindByEmail returns the account for an email address, or (nil, nil)
// when none exists.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT id, email, password_hash, first_name, preferences, created_at
	          FROM users WHERE email = ?`
	return r.scanOne(ctx, query, email)
}

// FindByID returns the account for an id, or (nil, nil) when none exists.
func (r *Repository) FindByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, email, password_hash, first_name, preferences, created_at
	          FROM users WHERE id = ?`
	return r.scanOne(ctx, query, id)
}

// UpdatePreferences replaces a user's standing style preferences.
func (r *Repository) UpdatePreferences(ctx context.Context, userID string, prefs *ai.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal user preferences: %w", err)
	}

	query := `UPDATE users SET preferences = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, string(data), userID); err != nil {
		r.logger.Database().Error("Failed to update user preferences", "error", err.Error(), "userId", userID)
		return fmt.Errorf("failed to update user preferences: %w", err)
	}
	return nil
}

func (r *Repository) scanOne(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, arg)

	var u user.User
	var prefs string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &prefs, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan user", "error", err.Error())
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if prefs != "" && prefs != "{}" {
		var p ai.Preferences
		if err := json.Unmarshal([]byte(prefs), &p); err != nil {
			r.logger.Database().Warn("Skipping malformed user preferences", "userId", u.ID, "error", err.Error())
		} else {
			u.Preferences = &p
		}
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, u.ID)
	}
	return &u, nil
}
