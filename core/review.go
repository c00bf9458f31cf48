package core

// DecisionType enumerates the external verdicts applicable to one pending
// action request.
type DecisionType string

const (
	// DecisionApprove executes the action exactly as proposed.
	DecisionApprove DecisionType = "approve"
	// DecisionEdit executes the action with caller-substituted arguments.
	// The substituted payload must re-assert the target action's name.
	DecisionEdit DecisionType = "edit"
	// DecisionReject records a synthetic, non-fatal refusal result in place
	// of execution.
	DecisionReject DecisionType = "reject"
)

// AllDecisions is the unrestricted decision set applied when a review
// config does not narrow it.
var AllDecisions = []DecisionType{DecisionApprove, DecisionEdit, DecisionReject}

// ActionRequest is a pending side-effecting operation awaiting a decision.
// Created only for operations whose policy requires review.
type ActionRequest struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ReviewConfig declares, per operation name, the subset of decisions a
// reviewer may take. An empty AllowedDecisions list means all decisions.
type ReviewConfig struct {
	ActionName       string         `json:"action_name"`
	AllowedDecisions []DecisionType `json:"allowed_decisions,omitempty"`
}

// Allows reports whether decision kind d is permitted by this config.
func (rc ReviewConfig) Allows(d DecisionType) bool {
	if len(rc.AllowedDecisions) == 0 {
		return true
	}
	for _, allowed := range rc.AllowedDecisions {
		if allowed == d {
			return true
		}
	}
	return false
}

// Decision is the external verdict for one action request. Decisions are
// matched 1:1, in order, to the action requests of one suspension.
type Decision struct {
	Type DecisionType `json:"type"`
	// EditedAction carries the substituted call for DecisionEdit. Its Name
	// must match the pending action's name.
	EditedAction *ActionRequest `json:"edited_action,omitempty"`
	// Message optionally explains a rejection; it is embedded in the
	// synthetic refusal result shown to the model.
	Message string `json:"message,omitempty"`
}

// Suspension is the payload returned to the caller when a run halts before
// protected operations. ActionRequests preserves call order; ReviewConfigs
// is positionally aligned with it.
type Suspension struct {
	ThreadID       string          `json:"thread_id"`
	ActionRequests []ActionRequest `json:"action_requests"`
	ReviewConfigs  []ReviewConfig  `json:"review_configs"`
}
