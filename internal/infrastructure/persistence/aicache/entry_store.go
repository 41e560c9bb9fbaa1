// Package aicache provides the SQL-backed entry store for the AI
// response cache.
package aicache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/oklog/ulid/v2"
)

// SQLEntryStore persists cache entries in the ai_response_cache table.
// All operations are single-row and scoped by user; concurrent access
// across requests and instances is resolved by the unique
// (user_id, request_hash) index, not by application-level locking.
type SQLEntryStore struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewSQLEntryStore creates the store over an open database handle.
func NewSQLEntryStore(db *sql.DB, logger *logging.ChanneledLogger) *SQLEntryStore {
	return &SQLEntryStore{db: db, logger: logger}
}

// SelectEntry fetches the entry for (userID, requestHash). Returns
// (nil, nil) when no row exists.
func (s *SQLEntryStore) SelectEntry(ctx context.Context, userID, requestHash string) (*aicache.Entry, error) {
	query := `SELECT id, user_id, request_hash, request_data, response, created_at, last_accessed_at, access_count
	          FROM ai_response_cache WHERE user_id = ? AND request_hash = ?`

	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, userID, requestHash)

	var entry aicache.Entry
	var requestData, response string
	err := row.Scan(&entry.ID, &entry.UserID, &entry.RequestHash, &requestData, &response,
		&entry.CreatedAt, &entry.LastAccessedAt, &entry.AccessCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Database().Error("Failed to scan cache entry", "error", err.Error(), "requestHash", requestHash)
		return nil, fmt.Errorf("failed to scan cache entry: %w", err)
	}
	entry.RequestData = []byte(requestData)
	entry.Response = []byte(response)

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration, userID)
	}
	return &entry, nil
}

// InsertEntry writes a new cache row, assigning a ULID surrogate key.
// A unique-index violation maps to aicache.ErrDuplicateEntry so the
// adapter can tell a lost store race from a real failure.
func (s *SQLEntryStore) InsertEntry(ctx context.Context, entry *aicache.Entry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}

	query := `INSERT INTO ai_response_cache
	          (id, user_id, request_hash, request_data, response, created_at, last_accessed_at, access_count)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	s.logger.Database().Debug("Executing cache entry insert", "requestHash", entry.RequestHash)

	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.RequestHash,
		string(entry.RequestData), string(entry.Response), entry.CreatedAt, entry.LastAccessedAt, entry.AccessCount)
	if err != nil {
		if isUniqueViolation(err) {
			return aicache.ErrDuplicateEntry
		}
		s.logger.Database().Error("Cache entry insert failed", "error", err.Error(), "requestHash", entry.RequestHash)
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration, entry.UserID)
	}
	return nil
}

// TouchEntry bumps the access counter and last-accessed timestamp for a
// validated hit. This and deletion are the only mutations a row ever
// sees; the response payload is write-once.
func (s *SQLEntryStore) TouchEntry(ctx context.Context, userID, requestHash string, accessedAt time.Time) error {
	query := `UPDATE ai_response_cache
	          SET access_count = access_count + 1, last_accessed_at = ?
	          WHERE user_id = ? AND request_hash = ?`

	_, err := s.db.ExecContext(ctx, query, accessedAt, userID, requestHash)
	if err != nil {
		s.logger.Database().Error("Cache entry touch failed", "error", err.Error(), "requestHash", requestHash)
		return fmt.Errorf("failed to update cache entry access: %w", err)
	}
	return nil
}

// DeleteEntry removes a single entry, typically after invalidation.
func (s *SQLEntryStore) DeleteEntry(ctx context.Context, userID, requestHash string) error {
	query := `DELETE FROM ai_response_cache WHERE user_id = ? AND request_hash = ?`

	_, err := s.db.ExecContext(ctx, query, userID, requestHash)
	if err != nil {
		s.logger.Database().Error("Cache entry delete failed", "error", err.Error(), "requestHash", requestHash)
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteExpired bulk-deletes rows created before cutoff, optionally only
// those never read.
func (s *SQLEntryStore) DeleteExpired(ctx context.Context, cutoff time.Time, onlyUnused bool) (int64, error) {
	query := `DELETE FROM ai_response_cache WHERE created_at < ?`
	args := []any{cutoff}
	if onlyUnused {
		query += ` AND access_count = 0`
	}

	start := time.Now()
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Database().Error("Cache eviction query failed", "error", err.Error())
		return 0, fmt.Errorf("failed to evict expired cache entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted cache entries: %w", err)
	}

	duration := time.Since(start)
	s.logger.Database().Info("Cache eviction completed", "deleted", deleted, "duration", duration)
	if duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration, "system")
	}
	return deleted, nil
}

// isUniqueViolation matches the constraint error text of both the
// sqlite3 and libsql drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT")
}
