package interrupt

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/logging"
)

// Controller mediates between the execution loop and the checkpoint store.
// It persists the continuation state when a run suspends, loads and
// validates it on resume, and clears it once the resumed step has been
// applied to the transcript.
type Controller struct {
	store  core.CheckpointStore
	logger *logging.RuntimeLogger
}

// NewController wraps a checkpoint store. A nil logger disables logging.
func NewController(store core.CheckpointStore, logger *logging.RuntimeLogger) *Controller {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Controller{store: store, logger: logger.WithComponent("interrupt")}
}

// Suspend persists the checkpoint and returns the external suspension
// payload. The checkpoint must already carry the suspended step's transcript
// and positionally aligned pending actions.
func (c *Controller) Suspend(ctx context.Context, cp *core.Checkpoint) (*core.Suspension, error) {
	if cp.ThreadID == "" {
		return nil, fmt.Errorf("checkpoint without thread id")
	}
	if len(cp.Pending) != len(cp.PendingIndexes) || len(cp.Pending) != len(cp.ReviewConfigs) {
		return nil, fmt.Errorf("misaligned checkpoint: %d pending, %d indexes, %d configs",
			len(cp.Pending), len(cp.PendingIndexes), len(cp.ReviewConfigs))
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	if err := c.store.Put(ctx, cp.ThreadID, cp); err != nil {
		return nil, fmt.Errorf("persist checkpoint: %w", err)
	}
	c.logger.LogInterrupt(cp.ThreadID, len(cp.Pending))
	return cp.Suspension(), nil
}

// Load fetches the checkpoint for a suspended thread. Returns
// core.ErrNotFound (wrapped) when no suspension is outstanding.
func (c *Controller) Load(ctx context.Context, threadID string) (*core.Checkpoint, error) {
	cp, err := c.store.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %q: %w", threadID, err)
	}
	return cp, nil
}

// Validate checks a decision list against the checkpoint's pending actions.
// Decisions map 1:1, in order, to the pending action requests. Any failure
// returns *core.ValidationError and leaves the stored checkpoint untouched,
// so the caller can retry the resume with corrected input.
func (c *Controller) Validate(cp *core.Checkpoint, decisions []core.Decision) error {
	if len(decisions) != len(cp.Pending) {
		err := &core.ValidationError{Reason: fmt.Sprintf(
			"expected %d decisions for %d pending actions, got %d",
			len(cp.Pending), len(cp.Pending), len(decisions))}
		c.logger.LogResume(cp.ThreadID, len(decisions), err)
		return err
	}
	for i, d := range decisions {
		action := cp.Pending[i]
		rc := cp.ReviewConfigs[i]
		switch d.Type {
		case core.DecisionApprove, core.DecisionEdit, core.DecisionReject:
		default:
			err := &core.ValidationError{Reason: fmt.Sprintf(
				"decision %d: unknown decision type %q", i, d.Type)}
			c.logger.LogResume(cp.ThreadID, len(decisions), err)
			return err
		}
		if !rc.Allows(d.Type) {
			err := &core.ValidationError{Reason: fmt.Sprintf(
				"decision %d: %q is not allowed for action %q", i, d.Type, action.Name)}
			c.logger.LogResume(cp.ThreadID, len(decisions), err)
			return err
		}
		if d.Type == core.DecisionEdit {
			if d.EditedAction == nil {
				err := &core.ValidationError{Reason: fmt.Sprintf(
					"decision %d: edit without an edited action payload", i)}
				c.logger.LogResume(cp.ThreadID, len(decisions), err)
				return err
			}
			if d.EditedAction.Name != action.Name {
				err := &core.ValidationError{Reason: fmt.Sprintf(
					"decision %d: edited action name %q does not match pending action %q",
					i, d.EditedAction.Name, action.Name)}
				c.logger.LogResume(cp.ThreadID, len(decisions), err)
				return err
			}
		}
	}
	c.logger.LogResume(cp.ThreadID, len(decisions), nil)
	return nil
}

// Clear removes the thread's checkpoint after a successful resume. Clearing
// is idempotent.
func (c *Controller) Clear(ctx context.Context, threadID string) error {
	if err := c.store.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("clear checkpoint %q: %w", threadID, err)
	}
	c.logger.LogCheckpoint(threadID, "delete", 0)
	return nil
}
