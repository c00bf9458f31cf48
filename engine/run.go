package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/interrupt"
	"github.com/hupe1980/deeprun/model"
	"github.com/hupe1980/deeprun/tool"
)

// ErrTooManyModelCalls aborts a run that exceeded the configured model call
// budget without reaching a terminal response.
var ErrTooManyModelCalls = errors.New("model call limit reached")

// ErrThreadSuspended rejects a new run on a thread whose previous run is
// awaiting review decisions.
var ErrThreadSuspended = errors.New("thread is suspended awaiting decisions")

// Status describes how a run ended.
type Status string

const (
	// StatusComplete marks a run that reached a terminal model response.
	StatusComplete Status = "complete"
	// StatusSuspended marks a run halted before protected operations.
	StatusSuspended Status = "suspended"
)

// Outcome is the result of Run or Resume.
type Outcome struct {
	Status Status
	// Result is the terminal model text for complete runs.
	Result string
	// Suspension carries the pending action requests for suspended runs.
	Suspension *core.Suspension
	// Messages is the transcript accumulated so far.
	Messages []core.Message
}

// Run starts a fresh run on the thread. A thread with an outstanding
// suspension must be resumed (or its checkpoint cleared) first.
func (e *Engine) Run(ctx context.Context, threadID, input string) (*Outcome, error) {
	if threadID == "" {
		return nil, fmt.Errorf("empty thread id")
	}
	if _, err := e.controller.Load(ctx, threadID); err == nil {
		return nil, fmt.Errorf("thread %q: %w", threadID, ErrThreadSuspended)
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	rc := core.NewRunContext(ctx, threadID, core.NewID(), e.fileSystem(threadID),
		e.logger.WithThread(threadID, ""))
	messages := []core.Message{core.NewUserMessage(input)}
	return e.runLoop(rc, e.mdl, e.registry, e.policy, e.system, messages, 0, true)
}

// Resume applies review decisions to the thread's suspended run and
// continues the loop. Validation failures leave the checkpoint intact so
// the resume can be retried; the checkpoint is cleared only after the
// decisions' results have been applied to the transcript.
func (e *Engine) Resume(ctx context.Context, threadID string, decisions []core.Decision) (*Outcome, error) {
	cp, err := e.controller.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := e.controller.Validate(cp, decisions); err != nil {
		return nil, err
	}

	rc := core.NewRunContext(ctx, threadID, core.NewID(), e.fileSystem(threadID),
		e.logger.WithThread(threadID, ""))

	results := make([]core.ToolResult, len(cp.Results))
	copy(results, cp.Results)

	// Pending actions execute in call order; every decision fills exactly
	// the slot its action held in the suspended step.
	for i, d := range decisions {
		action := cp.Pending[i]
		slot := cp.PendingIndexes[i]
		switch d.Type {
		case core.DecisionApprove:
			results[slot] = e.executeAction(rc, action)
		case core.DecisionEdit:
			edited := *d.EditedAction
			edited.ID = action.ID
			results[slot] = e.executeAction(rc, edited)
		case core.DecisionReject:
			msg := d.Message
			if msg == "" {
				msg = "rejected by reviewer"
			}
			results[slot] = core.ToolResult{
				ID:    action.ID,
				Name:  action.Name,
				Error: fmt.Sprintf("tool call was not executed: %s", msg),
			}
		}
	}

	messages := append(append([]core.Message{}, cp.Messages...), core.NewToolMessage(results))
	if err := e.controller.Clear(ctx, threadID); err != nil {
		return nil, err
	}
	return e.runLoop(rc, e.mdl, e.registry, e.policy, e.system, messages, cp.Step+1, true)
}

// runLoop is the shared model/tool cycle. Root runs pass suspendable=true;
// delegated runs pass false, so a protected tool fails as an ordinary tool
// error instead of suspending the parent.
func (e *Engine) runLoop(
	rc *core.RunContext,
	mdl model.Model,
	reg *tool.Registry,
	policy *interrupt.Policy,
	system string,
	messages []core.Message,
	startStep int,
	suspendable bool,
) (*Outcome, error) {
	defs := toolDefinitions(reg)

	for step := startStep; ; step++ {
		if step >= e.cfg.MaxModelCalls {
			return nil, fmt.Errorf("thread %q after %d calls: %w", rc.ThreadID, step, ErrTooManyModelCalls)
		}

		start := time.Now()
		resp, err := mdl.Generate(rc.Context, model.Request{
			System:   system,
			Messages: messages,
			Tools:    defs,
		})
		tokens := 0
		if resp != nil && resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		e.logger.LogModelCall(mdl.Info().Name, tokens, time.Since(start), err == nil, err)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			messages = append(messages, core.NewAssistantMessage(resp.Text, nil))
			return &Outcome{Status: StatusComplete, Result: resp.Text, Messages: messages}, nil
		}

		messages = append(messages, core.NewAssistantMessage(resp.Text, resp.ToolCalls))

		results := make([]core.ToolResult, len(resp.ToolCalls))
		var (
			pendingIdx []int
			pending    []core.ActionRequest
			configs    []core.ReviewConfig
		)

		var wg sync.WaitGroup
		for i, call := range resp.ToolCalls {
			if cfg, protected := reviewFor(policy, reg, call.Name); protected {
				if suspendable {
					pendingIdx = append(pendingIdx, i)
					pending = append(pending, actionRequest(call))
					configs = append(configs, cfg)
					continue
				}
				// Delegated runs cannot suspend; a protected call fails as
				// an ordinary tool error instead of sidestepping review.
				violation := &core.PolicyViolationError{Tool: call.Name}
				results[i] = core.ToolResult{ID: call.ID, Name: call.Name, Error: violation.Error()}
				continue
			}
			wg.Add(1)
			go func(i int, call core.ToolCall) {
				defer wg.Done()
				results[i] = e.executeCall(rc, reg, call)
			}(i, call)
		}
		wg.Wait()

		if len(pending) > 0 {
			susp, err := e.controller.Suspend(rc.Context, &core.Checkpoint{
				ThreadID:       rc.ThreadID,
				Messages:       messages,
				Results:        results,
				PendingIndexes: pendingIdx,
				Pending:        pending,
				ReviewConfigs:  configs,
				Step:           step,
			})
			if err != nil {
				return nil, err
			}
			return &Outcome{Status: StatusSuspended, Suspension: susp, Messages: messages}, nil
		}

		messages = append(messages, core.NewToolMessage(results))
	}
}

// executeCall dispatches one unprotected tool call.
func (e *Engine) executeCall(rc *core.RunContext, reg *tool.Registry, call core.ToolCall) core.ToolResult {
	args, err := parseArguments(call.Arguments)
	if err != nil {
		return core.ToolResult{ID: call.ID, Name: call.Name, Error: err.Error()}
	}
	toolCtx := core.NewToolContext(rc, call.ID)
	out, err := reg.Execute(toolCtx, call.Name, args, false)
	if err != nil {
		return core.ToolResult{ID: call.ID, Name: call.Name, Error: err.Error()}
	}
	return core.ToolResult{ID: call.ID, Name: call.Name, Content: stringify(out)}
}

// executeAction dispatches one reviewed (approved or edited) action.
func (e *Engine) executeAction(rc *core.RunContext, action core.ActionRequest) core.ToolResult {
	toolCtx := core.NewToolContext(rc, action.ID)
	out, err := e.registry.Execute(toolCtx, action.Name, action.Args, true)
	if err != nil {
		return core.ToolResult{ID: action.ID, Name: action.Name, Error: err.Error()}
	}
	return core.ToolResult{ID: action.ID, Name: action.Name, Content: stringify(out)}
}

func actionRequest(call core.ToolCall) core.ActionRequest {
	args, err := parseArguments(call.Arguments)
	if err != nil {
		args = map[string]any{}
	}
	return core.ActionRequest{ID: call.ID, Name: call.Name, Args: args}
}

func parseArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("malformed tool arguments: %w", err)
	}
	return args, nil
}

func stringify(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func toolDefinitions(reg *tool.Registry) []model.ToolDefinition {
	names := reg.Names()
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		registration, ok := reg.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, model.ToolDefinition{
			Name:        registration.Tool.Name(),
			Description: registration.Tool.Description(),
			Parameters:  registration.Tool.Parameters(),
		})
	}
	return defs
}
