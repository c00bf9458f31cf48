package engine

import (
	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/tool"
)

// NameTask is the delegation tool exposed to models when subagents exist.
const NameTask = "task"

// taskTool hands scoped work to a named subagent. Multiple task calls in
// one step fan out concurrently through the engine's dispatch; results come
// back in call order.
func (e *Engine) taskTool() tool.Tool {
	description := "Delegate a self-contained task to a specialized subagent. " +
		"The subagent works in its own scratch space and returns a single result.\n" +
		"Available subagents:\n" + e.pool.Describe()

	return tool.NewFunctionTool(
		NameTask,
		description,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"subagent": map[string]any{
					"type":        "string",
					"description": "Name of the subagent to delegate to",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "Complete, self-contained task description",
				},
			},
			"required": []string{"subagent", "input"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			name, _ := args["subagent"].(string)
			input, _ := args["input"].(string)
			return e.pool.Invoke(tc.RunContext(), name, input)
		},
	)
}
