package stores

import (
	"context"
	"errors"
	"time"

	"github.com/flowstate/flowstate/pkg/state"
)

// ErrNotFound is returned when a task run has no stored state.
var ErrNotFound = errors.New("state not found")

// StateRecord is one persisted state transition of a task run.
type StateRecord struct {
	// ID is the record's monotonically increasing sequence number.
	ID int64 `json:"id"`

	// TaskRunID identifies the task run the state belongs to.
	TaskRunID string `json:"task_run_id"`

	// Type is the state variant discriminator, denormalized for querying
	// without decoding the payload.
	Type string `json:"state_type"`

	// Version is the engine version that produced the payload.
	Version string `json:"version"`

	// Payload is the wire object as a JSON document.
	Payload string `json:"payload"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and recalls task-run states.
type Store interface {
	// Init opens the underlying database.
	Init(ctx context.Context) error

	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error

	// Close releases the underlying database.
	Close() error

	// SaveState appends a new state for the task run.
	SaveState(ctx context.Context, taskRunID string, s state.State) error

	// LatestState returns the most recently saved state of the task run,
	// or ErrNotFound.
	LatestState(ctx context.Context, taskRunID string) (state.State, error)

	// History returns every recorded state of the task run, oldest first.
	History(ctx context.Context, taskRunID string) ([]StateRecord, error)

	// ListRuns returns the IDs of all task runs with at least one state.
	ListRuns(ctx context.Context) ([]string, error)
}
