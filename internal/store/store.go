// Package store persists analysis submissions.
package store

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/docscan/internal/config"
	"github.com/sells-group/docscan/internal/model"
)

// ErrNoRowsWritten is returned when an insert reports success but wrote
// nothing, which is how row-level policies usually reject a write.
var ErrNoRowsWritten = eris.New("store: insert returned no rows; check RLS or table policies")

// DefaultListLimit is used when ListSubmissions gets a non-positive limit.
const DefaultListLimit = 20

// Store defines the persistence interface for submissions. Submissions are
// append-only.
type Store interface {
	CreateSubmission(ctx context.Context, sub model.Submission) (string, error)
	ListSubmissions(ctx context.Context, userID string, limit int) ([]model.Submission, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const submissionsTable = "submissions"

var submissionColumns = []string{"id", "user_id", "user_name", "content", "report", "created_at"}

// New opens the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	case DriverSQLite:
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// IsPermissionDenied reports whether err looks like an authorization-policy
// rejection (SQLSTATE 42501 or a row-level security violation).
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "42501") || strings.Contains(msg, "row-level security")
}

func listQuery(ph sq.PlaceholderFormat, userID string, limit int) sq.SelectBuilder {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return sq.Select(submissionColumns...).
		From(submissionsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(ph)
}
