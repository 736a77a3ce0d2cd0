package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"bastion-hq/rampart/pkg/report"
)

// StoredEvent is one persisted attack event row.
type StoredEvent struct {
	ID        string
	CreatedAt time.Time
	RequestID string
	RuleID    string
	RuleName  string
	Payload   json.RawMessage
}

// Config contains configuration for the SQLite event store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// QueueSize is the capacity of the asynchronous write queue.
	// Default: 256
	QueueSize int
}

// DefaultConfig returns the default store configuration for the given
// database path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
		QueueSize:    256,
	}
}

// SQLiteStore persists attack events to a SQLite database. It implements
// report.Reporter with an asynchronous write queue so the request path
// never waits on disk.
type SQLiteStore struct {
	db     *sql.DB
	cfg    *Config
	logger *slog.Logger

	queue   chan StoredEvent
	done    chan struct{}
	pending sync.WaitGroup

	closeOnce sync.Once
}

// NewSQLiteStore opens the database, initializes the schema, and starts
// the background writer.
func NewSQLiteStore(cfg *Config, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is nil")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event database %q: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		cfg:    cfg,
		logger: logger.With("component", "report.store"),
		queue:  make(chan StoredEvent, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	go s.writeLoop()

	s.logger.Info("event store initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"queue_size", cfg.QueueSize,
	)
	return s, nil
}

// initialize applies pragmas and creates the schema.
func (s *SQLiteStore) initialize() error {
	if s.cfg.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.cfg.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}
	return nil
}

// ReportAttack implements report.Reporter. The payload is parsed into its
// individual events and each is queued for persistence. A full queue drops
// the event rather than blocking the request path.
func (s *SQLiteStore) ReportAttack(payload json.RawMessage, reqCtx any) {
	events, err := report.ParseEvents(payload)
	if err != nil {
		s.logger.Warn("failed to parse attack payload, storing raw",
			"error", err,
		)
		s.enqueue(StoredEvent{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
			RequestID: report.ContextID(reqCtx),
			RuleID:    "unknown",
			RuleName:  "unparsed event",
			Payload:   append(json.RawMessage(nil), payload...),
		})
		return
	}

	now := time.Now().UTC()
	requestID := report.ContextID(reqCtx)
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		s.enqueue(StoredEvent{
			ID:        uuid.NewString(),
			CreatedAt: now,
			RequestID: requestID,
			RuleID:    ev.Rule.ID,
			RuleName:  ev.Rule.Name,
			Payload:   raw,
		})
	}
}

func (s *SQLiteStore) enqueue(ev StoredEvent) {
	s.pending.Add(1)
	select {
	case s.queue <- ev:
	default:
		s.pending.Done()
		s.logger.Warn("event queue full, dropping attack event",
			"rule_id", ev.RuleID,
		)
	}
}

// writeLoop drains the queue until Close.
func (s *SQLiteStore) writeLoop() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.insert(ev); err != nil {
			s.logger.Error("failed to persist attack event",
				"rule_id", ev.RuleID,
				"error", err,
			)
		}
		s.pending.Done()
	}
}

func (s *SQLiteStore) insert(ev StoredEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO attack_events (id, created_at, request_id, rule_id, rule_name, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.CreatedAt, ev.RequestID, ev.RuleID, ev.RuleName, string(ev.Payload),
	)
	return err
}

// Recent returns up to limit stored events, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, request_id, rule_id, rule_name, payload
		 FROM attack_events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		var payload string
		if err := rows.Scan(&ev.ID, &ev.CreatedAt, &ev.RequestID, &ev.RuleID, &ev.RuleName, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.Payload = json.RawMessage(payload)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Ping verifies the database connection, for readiness checks.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the total number of stored events.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attack_events`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// PruneBefore deletes events created before the cutoff and returns how
// many rows were removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM attack_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Flush blocks until every event queued before the call has been written
// (or dropped). Intended for tests and shutdown paths.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(flushed)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-flushed:
		return nil
	}
}

// Close stops the writer after draining queued events and closes the
// database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.queue)
		<-s.done
		err = s.db.Close()
	})
	return err
}
