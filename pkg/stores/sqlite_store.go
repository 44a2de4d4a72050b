package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/flowstate/flowstate/pkg/state"
	"github.com/flowstate/flowstate/pkg/telemetry"
	"github.com/flowstate/flowstate/pkg/wire"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	cfg     Config
	handler wire.ResultHandler
	log     *telemetry.Logger
	metrics *telemetry.Metrics
}

// Config holds SQLite store configuration.
type Config struct {
	// Path is the database file path. Required.
	Path string

	// Handler, when set, is applied to opaque result fields on every
	// save and load.
	Handler wire.ResultHandler

	// Logger receives store diagnostics. Optional.
	Logger *telemetry.Logger

	// Metrics receives store and serialization metrics. Optional.
	Metrics *telemetry.Metrics

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	log := cfg.Logger
	if log == nil {
		log = telemetry.FromContext(nil)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics, _ = telemetry.NewMetrics(telemetry.MetricsConfig{})
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	return &SQLiteStore{
		cfg:     cfg,
		handler: cfg.Handler,
		log:     log.NewComponentLogger("sqlite_store"),
		metrics: metrics,
	}, nil
}

// Init opens the database and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations from the embedded migration files.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SaveState serializes the state and appends it to the task run's history.
func (s *SQLiteStore) SaveState(ctx context.Context, taskRunID string, st state.State) error {
	start := time.Now()
	defer func() { s.metrics.RecordStoreOperation("save_state", time.Since(start)) }()

	obj, err := wire.Dump(st, s.wireOptions()...)
	if err != nil {
		s.metrics.RecordSerializationError(errorClass(err))
		return err
	}
	s.metrics.RecordStateSerialized(string(st.Type()))

	payload, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode wire object: %w", err)
	}

	version, _ := obj[wire.FieldVersion].(string)
	query := `
		INSERT INTO task_run_states (task_run_id, state_type, version, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		taskRunID, string(st.Type()), version, string(payload), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	s.log.WithTaskRunID(taskRunID).WithStateType(string(st.Type())).Debug("state saved")
	return nil
}

// LatestState loads the task run's most recent state.
func (s *SQLiteStore) LatestState(ctx context.Context, taskRunID string) (state.State, error) {
	start := time.Now()
	defer func() { s.metrics.RecordStoreOperation("latest_state", time.Since(start)) }()

	query := `
		SELECT payload FROM task_run_states
		WHERE task_run_id = ?
		ORDER BY id DESC
		LIMIT 1
	`
	var payload string
	err := s.db.QueryRowContext(ctx, query, taskRunID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest state: %w", err)
	}

	return s.decode(payload)
}

// History returns every recorded state of the task run, oldest first.
func (s *SQLiteStore) History(ctx context.Context, taskRunID string) ([]StateRecord, error) {
	start := time.Now()
	defer func() { s.metrics.RecordStoreOperation("history", time.Since(start)) }()

	query := `
		SELECT id, task_run_id, state_type, version, payload, created_at
		FROM task_run_states
		WHERE task_run_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []StateRecord
	for rows.Next() {
		var r StateRecord
		if err := rows.Scan(&r.ID, &r.TaskRunID, &r.Type, &r.Version, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan state record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}

// ListRuns returns the IDs of all task runs with at least one state.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT task_run_id FROM task_run_states ORDER BY task_run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) decode(payload string) (state.State, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, fmt.Errorf("failed to decode wire object: %w", err)
	}
	st, err := wire.Load(obj, s.wireOptions()...)
	if err != nil {
		s.metrics.RecordSerializationError(errorClass(err))
		return nil, err
	}
	s.metrics.RecordStateDeserialized(string(st.Type()))
	return st, nil
}

func (s *SQLiteStore) wireOptions() []wire.Option {
	if s.handler == nil {
		return nil
	}
	return []wire.Option{wire.WithResultHandler(s.handler)}
}

func errorClass(err error) string {
	var serr *wire.SerializationError
	if errors.As(err, &serr) {
		return string(serr.Class)
	}
	return "handler"
}
