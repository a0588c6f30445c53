package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	filename     TEXT NOT NULL,
	field_count  INTEGER NOT NULL,
	form_title   TEXT NOT NULL DEFAULT '',
	provider     TEXT NOT NULL,
	extracted_at TEXT NOT NULL
);`

// SQLiteStore persists the bounded history across restarts. Appends trim
// the table back down to the limit, oldest rows first.
type SQLiteStore struct {
	db     *sql.DB
	limit  int
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, limit int, logger *slog.Logger) (*SQLiteStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteStore{db: db, limit: limit, logger: logger}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extraction_history (filename, field_count, form_title, provider, extracted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Filename, e.FieldCount, e.FormTitle, e.Provider, e.ExtractedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM extraction_history
		 WHERE id NOT IN (SELECT id FROM extraction_history ORDER BY id DESC LIMIT ?)`, s.limit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, field_count, form_title, provider, extracted_at
		 FROM extraction_history ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.Filename, &e.FieldCount, &e.FormTitle, &e.Provider, &ts); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
			e.ExtractedAt = t
		} else {
			s.logger.Warn("history.timestamp.unparseable", "value", ts)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
