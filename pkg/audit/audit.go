package audit

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/burstline/core/pkg/logger"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Entry records one control action against the service.
type Entry struct {
	At        time.Time
	Action    string // submit, stop, clear
	SessionID int64
	Actor     string
	Detail    string
	OK        bool
}

// Store is an append-only audit trail backed by a local sqlite file.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open initializes the audit database, creating the schema if needed.
func Open(path string, log *logger.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, logger: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().
		Str("action", "audit_opened").
		Str("path", path).
		Msg("Audit store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// Record appends one entry. Callers treat failures as log-only; the audit
// trail never fails a control request.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit(at, action, session_id, actor, detail, ok)
		 VALUES(?,?,?,?,?,?)`,
		e.At.Format(time.RFC3339Nano), e.Action, e.SessionID,
		nullStr(e.Actor), nullStr(e.Detail), e.OK,
	)
	return err
}

// Recent returns the latest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, action, session_id, actor, detail, ok
		 FROM audit ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			at            string
			actor, detail sql.NullString
			e             Entry
		)
		if err := rows.Scan(&at, &e.Action, &e.SessionID, &actor, &detail, &e.OK); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = t
		}
		e.Actor = actor.String
		e.Detail = detail.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
