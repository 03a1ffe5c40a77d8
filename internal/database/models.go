package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"

	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/metrics"
)

// Sentinel errors returned by the store. Handlers map them to HTTP statuses
// with errors.Is; the wrapped message is safe to show to the caller.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid request")
)

// Store is the single datastore handle shared by every handler.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func now() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// adjustCounter applies a denormalised counter update after its child row
// has been written. A failure is logged and counted, never returned.
func (s *Store) adjustCounter(ctx context.Context, column, parentID, query string, args ...any) {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		metrics.RecordSideEffectFailure("counter")
		logging.Ctx(ctx).Warn().Err(err).
			Str("counter", column).
			Str("parent_id", parentID).
			Msg("failed to update counter")
	}
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func decodeJSON[T any](raw string) T {
	var v T
	if raw == "" {
		return v
	}
	_ = json.Unmarshal([]byte(raw), &v)
	return v
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
