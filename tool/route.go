package tool

import (
	"encoding/json"
	"fmt"
)

// routeConversationTool is the designated routing tool declared by
// handoff-mode agents. The model calls it to name the agent that should
// answer the turn; the tool validates and echoes the payload so the routing
// extractor can recover it from the transcript.
type routeConversationTool struct{}

// NewRouteConversationTool constructs the routing tool instance.
func NewRouteConversationTool() Tool { return &routeConversationTool{} }

func (t *routeConversationTool) Name() string { return "route_conversation" }

func (t *routeConversationTool) Description() string {
	return "Select the agent best suited to answer the current turn. " +
		"Provide the target agent name, a confidence between 0 and 5, short reasoning, " +
		"and a fallback agent name (empty string selects the default agent)."
}

func (t *routeConversationTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_agent":    map[string]any{"type": "string", "description": "Name of the agent that should answer"},
			"confidence":      map[string]any{"type": "number", "description": "Routing confidence in [0,5]"},
			"reasoning":       map[string]any{"type": "string", "description": "Short routing rationale"},
			"fallback_agent":  map[string]any{"type": "string", "description": "Agent to use if the target fails; empty for default"},
			"intent_keywords": map[string]any{"type": "array", "description": "Keywords that drove the choice"},
			"context_factors": map[string]any{"type": "array", "description": "Conversation context factors considered"},
		},
		"required": []string{"target_agent"},
	}
}

// Call validates the minimal shape and returns the payload verbatim so it
// lands in the tool transcript for extraction.
func (t *routeConversationTool) Call(tc *Context, args map[string]any) (any, error) {
	raw, ok := args["target_agent"]
	if !ok {
		return nil, &Error{Tool: t.Name(), Message: "missing required field target_agent", Code: "VALIDATION_ERROR"}
	}
	target, ok := raw.(string)
	if !ok || target == "" {
		return nil, &Error{Tool: t.Name(), Message: "field target_agent must be a non-empty string", Code: "VALIDATION_ERROR"}
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return nil, &Error{Tool: t.Name(), Message: fmt.Sprintf("payload not serializable: %v", err), Code: "EXECUTION_ERROR"}
	}

	ctxLogger(tc).Debug("tool.route.selected", "target", target)

	return string(payload), nil
}
