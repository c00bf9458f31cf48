package core

import (
	"context"
	"time"
)

// Checkpoint is the serialized continuation state persisted at suspension.
// It captures the transcript through the suspended step's assistant message,
// the results already produced for that step's unprotected calls, and the
// ordered pending action requests awaiting decisions.
//
// Results has one slot per tool call of the suspended step; slots listed in
// PendingIndexes are filled during resume. Pending and ReviewConfigs are
// positionally aligned with PendingIndexes.
type Checkpoint struct {
	ThreadID       string          `json:"thread_id"`
	Messages       []Message       `json:"messages"`
	Results        []ToolResult    `json:"results"`
	PendingIndexes []int           `json:"pending_indexes"`
	Pending        []ActionRequest `json:"pending"`
	ReviewConfigs  []ReviewConfig  `json:"review_configs"`
	Step           int             `json:"step"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Suspension builds the external payload for this checkpoint's pending actions.
func (cp *Checkpoint) Suspension() *Suspension {
	return &Suspension{
		ThreadID:       cp.ThreadID,
		ActionRequests: cp.Pending,
		ReviewConfigs:  cp.ReviewConfigs,
	}
}

// CheckpointStore is a durable mapping from thread identifier to one
// serialized checkpoint. Put must be atomic: no partial checkpoint is ever
// observable. Checkpoints are overwritten, never appended; Get returns
// ErrNotFound for an unknown thread. Different threads' checkpoints are
// independent; writes for the same thread need not be serialized here.
type CheckpointStore interface {
	Put(ctx context.Context, threadID string, cp *Checkpoint) error
	Get(ctx context.Context, threadID string) (*Checkpoint, error)
	Delete(ctx context.Context, threadID string) error
}
