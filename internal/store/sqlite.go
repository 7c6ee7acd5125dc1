package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/docscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is intended for
// local development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "docscan.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	user_name  TEXT NOT NULL,
	content    TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_user_created ON submissions(user_id, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSubmission(ctx context.Context, sub model.Submission) (string, error) {
	content, report, err := marshalSubmission(sub)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	query, args, err := sq.Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(id, sub.UserID, sub.UserName, string(content), string(report), time.Now().UTC()).
		ToSql()
	if err != nil {
		return "", eris.Wrap(err, "sqlite: build insert")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert submission")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return "", ErrNoRowsWritten
	}
	return id, nil
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	query, args, err := listQuery(sq.Question, userID, limit).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build list")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close() //nolint:errcheck

	subs := []model.Submission{}
	for rows.Next() {
		var (
			sub             model.Submission
			content, report string
		)
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.UserName, &content, &report, &sub.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan submission")
		}
		if err := unmarshalSubmission(&sub, []byte(content), []byte(report)); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: iterate submissions")
}
