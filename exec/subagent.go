package exec

import (
	"fmt"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/tool"
)

// subAgentTool exposes a controller-mode agent's sub-agent as an in-turn
// callable capability. The sub-agent runs under a scoped identity so its
// checkpoint stays separate from the controller's.
type subAgentTool struct {
	exec  *ModelExecutor
	agent *core.AgentDefinition
}

func (t *subAgentTool) Name() string {
	return "ask_" + t.agent.Name
}

func (t *subAgentTool) Description() string {
	return fmt.Sprintf("Ask the %s agent a question. %s", t.agent.Name, t.agent.Description)
}

func (t *subAgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question or task to delegate to the sub-agent.",
			},
		},
		"required": []string{"question"},
	}
}

func (t *subAgentTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	if question == "" {
		return nil, &tool.Error{Tool: t.Name(), Message: "question must be a non-empty string", Code: "VALIDATION_ERROR"}
	}

	scoped := tc.Identity.WithScope(t.agent.Name)
	res, err := t.exec.Invoke(tc.Ctx, t.agent, []core.Message{core.NewUserMessage(question)}, scoped)
	if err != nil {
		return nil, &tool.Error{Tool: t.Name(), Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return res.Reply(), nil
}
