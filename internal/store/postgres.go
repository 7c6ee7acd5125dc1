package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/docscan/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool. It is meant to connect with
// a service credential so that row-level policies do not apply.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	user_name  TEXT NOT NULL,
	content    JSONB NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_user_created ON submissions(user_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// CreateSubmission inserts sub and returns the generated id. An insert that
// returns no row yields ErrNoRowsWritten.
func (s *PostgresStore) CreateSubmission(ctx context.Context, sub model.Submission) (string, error) {
	content, report, err := marshalSubmission(sub)
	if err != nil {
		return "", err
	}

	query, args, err := psql.Insert(submissionsTable).
		Columns("user_id", "user_name", "content", "report").
		Values(sub.UserID, sub.UserName, content, report).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", eris.Wrap(err, "postgres: build insert")
	}

	var id string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoRowsWritten
		}
		return "", eris.Wrap(err, "postgres: insert submission")
	}
	if id == "" {
		return "", ErrNoRowsWritten
	}
	return id, nil
}

// ListSubmissions returns the user's submissions, newest first.
func (s *PostgresStore) ListSubmissions(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	query, args, err := listQuery(sq.Dollar, userID, limit).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var (
			sub             model.Submission
			content, report []byte
		)
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.UserName, &content, &report, &sub.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan submission")
		}
		if err := unmarshalSubmission(&sub, content, report); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: iterate submissions")
}

func marshalSubmission(sub model.Submission) (content, report []byte, err error) {
	content, err = json.Marshal(sub.Content)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal content")
	}
	if sub.Report.OnlineSources == nil {
		sub.Report.OnlineSources = []model.SourceMatch{}
	}
	report, err = json.Marshal(sub.Report)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal report")
	}
	return content, report, nil
}

func unmarshalSubmission(sub *model.Submission, content, report []byte) error {
	if err := json.Unmarshal(content, &sub.Content); err != nil {
		return eris.Wrapf(err, "store: unmarshal content of %s", sub.ID)
	}
	if err := json.Unmarshal(report, &sub.Report); err != nil {
		return eris.Wrapf(err, "store: unmarshal report of %s", sub.ID)
	}
	if sub.Report.OnlineSources == nil {
		sub.Report.OnlineSources = []model.SourceMatch{}
	}
	return nil
}
