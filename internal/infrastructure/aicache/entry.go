package aicache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
)

// Entry is one persisted cache row. At most one live entry exists per
// (user, request hash); the response payload is write-once and only the
// access bookkeeping fields ever change after insert.
type Entry struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	RequestHash    string          `json:"requestHash"`
	RequestData    json.RawMessage `json:"requestData"`
	Response       json.RawMessage `json:"response"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessedAt time.Time       `json:"lastAccessedAt"`
	AccessCount    int64           `json:"accessCount"`
}

// RequestSnapshot is the diagnostic request_data payload stored alongside
// each response: the inputs that produced it, the season at write time,
// and the key metrics/fingerprint for later analysis.
type RequestSnapshot struct {
	PromptType        string                `json:"promptType"`
	ItemCount         int                   `json:"itemCount"`
	Context           ai.RequestContext     `json:"context,omitempty"`
	UserContext       *ai.UserContext       `json:"userContext,omitempty"`
	SeasonalContext   SnapshotSeason        `json:"seasonalContext"`
	WardrobeEvolution *ai.WardrobeEvolution `json:"wardrobeEvolution,omitempty"`
	Metrics           KeyMetrics            `json:"metrics"`
	Fingerprint       Fingerprint           `json:"fingerprint"`
}

// SnapshotSeason records the calendar season when the entry was written.
type SnapshotSeason struct {
	Season string `json:"season"`
}

// ErrDuplicateEntry is returned by EntryStore.InsertEntry when the
// (user, request hash) pair already exists. Two concurrent misses on the
// same key can both generate and both attempt to store; the loser of
// that race sees this error and simply keeps its own generated result.
var ErrDuplicateEntry = errors.New("aicache: duplicate cache entry")

// EntryStore is the persisted table the cache runs against. SelectEntry
// returns (nil, nil) when no row matches; not-found is not an error.
type EntryStore interface {
	SelectEntry(ctx context.Context, userID, requestHash string) (*Entry, error)
	InsertEntry(ctx context.Context, entry *Entry) error
	TouchEntry(ctx context.Context, userID, requestHash string, accessedAt time.Time) error
	DeleteEntry(ctx context.Context, userID, requestHash string) error
	DeleteExpired(ctx context.Context, cutoff time.Time, onlyUnused bool) (int64, error)
}
