// Package sink persists final results to an append-only sqlite store.
// Persistence is best effort: the sink is disabled for the process
// lifetime when the store cannot be opened, and per-row failures never
// surface to the caller.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mveldman/jobmatch/internal/posting"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	saved_at   TEXT NOT NULL,
	candidate  TEXT NOT NULL,
	title      TEXT NOT NULL,
	company    TEXT NOT NULL,
	location   TEXT NOT NULL,
	job_url    TEXT NOT NULL
);`

type Sink struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to the sqlite store at path and ensures the results table
// exists. The returned error leaves the caller free to run without a sink.
func Open(path string, log *zap.Logger) (*Sink, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	return &Sink{db: db, logger: log}, nil
}

// Enabled reports whether appends will be attempted at all.
func (s *Sink) Enabled() bool {
	return s != nil && s.db != nil
}

// Append writes one row per posting. Each row is independent: a failed
// insert is logged and the remaining rows are still attempted.
func (s *Sink) Append(ctx context.Context, candidate string, p *posting.Postings) {
	if !s.Enabled() || p.Len() == 0 {
		return
	}

	savedAt := time.Now().UTC().Format("2006-01-02 15:04:05")

	for _, item := range p.Items {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO results (saved_at, candidate, title, company, location, job_url)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			savedAt, candidate, item.Title, item.Company, item.Location, item.URL,
		)
		if err != nil && s.logger != nil {
			s.logger.Warn("sink append failed",
				zap.String("job_url", item.URL),
				zap.Error(err),
			)
		}
	}
}

func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
