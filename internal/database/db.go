// Package database persists debate requests, reports, transcripts, and
// evidence citations in SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Config holds SQLite connection settings.
type Config struct {
	// Path is the database file path. Empty selects a shared in-memory
	// database, which is what the tests use.
	Path string `yaml:"path" json:"path"`
	// BusyTimeout is the SQLite busy timeout in milliseconds.
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout"`
}

// DefaultConfig returns settings for a local database file.
func DefaultConfig() Config {
	return Config{
		Path:        "cogito.db",
		BusyTimeout: 5000,
	}
}

// DB wraps the SQLite handle shared by the repositories.
type DB struct {
	conn   *sql.DB
	logger *logrus.Logger
}

// Open opens the database and verifies connectivity. Foreign keys are
// enabled so report deletion cascades to logs and evidence.
func Open(cfg Config, logger *logrus.Logger) (*DB, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5000
	}

	dsn := cfg.Path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	dsn += dsnSeparator(dsn) + fmt.Sprintf("_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", cfg.BusyTimeout)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer connection.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.WithField("path", cfg.Path).Info("Connected to SQLite database")
	return &DB{conn: conn, logger: logger}, nil
}

func dsnSeparator(dsn string) string {
	for _, c := range dsn {
		if c == '?' {
			return "&"
		}
	}
	return "?"
}

// Conn exposes the underlying handle to the repositories.
func (d *DB) Conn() *sql.DB { return d.conn }

// Close closes the database.
func (d *DB) Close() error { return d.conn.Close() }

// HealthCheck pings the database with a short timeout.
func (d *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return d.conn.PingContext(ctx)
}

// CreateSchema creates all tables if they do not exist.
func (d *DB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS decision_requests (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debate_reports (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES decision_requests(id) ON DELETE CASCADE,
		final_decision_matrix TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debate_logs (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL REFERENCES debate_reports(id) ON DELETE CASCADE,
		agent_name TEXT NOT NULL,
		agent_role TEXT NOT NULL,
		round_number INTEGER NOT NULL,
		argument_text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS evidence_citations (
		id TEXT PRIMARY KEY,
		log_id TEXT REFERENCES debate_logs(id) ON DELETE CASCADE,
		source_document TEXT NOT NULL,
		content_chunk TEXT NOT NULL,
		search_query TEXT,
		relevance_score REAL,
		retrieved_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_debate_reports_request_id ON debate_reports(request_id);
	CREATE INDEX IF NOT EXISTS idx_debate_logs_report_id ON debate_logs(report_id);
	CREATE INDEX IF NOT EXISTS idx_evidence_citations_log_id ON evidence_citations(log_id);
	`

	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	d.logger.Info("Database schema created/verified")
	return nil
}
