package tool

import (
	"fmt"
	"time"
)

// FunctionTool adapts a plain Go function into a Tool. Arguments are checked
// against the declared schema (required fields, primitive types) before the
// function runs; failures are wrapped as *Error with stable codes.
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(tc *Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(tc *Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function. Validation failures carry code VALIDATION_ERROR; other failures
// EXECUTION_ERROR. A returned *Error is forwarded unchanged.
func (t *FunctionTool) Call(tc *Context, args map[string]any) (any, error) {
	logger := ctxLogger(tc)
	start := time.Now()

	if err := validateArgs(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return nil, &Error{Tool: t.name, Message: err.Error(), Code: "VALIDATION_ERROR"}
	}

	result, err := t.fn(tc, args)
	if err != nil {
		if toolErr, ok := err.(*Error); ok {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}
		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())
		return nil, &Error{Tool: t.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}

	logger.Debug("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// validateArgs enforces required fields and primitive JSON types from a
// minimal schema. Extra fields are allowed.
func validateArgs(args map[string]any, schema map[string]any) error {
	required, _ := schema["required"].([]string)
	if required == nil {
		if rawList, ok := schema["required"].([]any); ok {
			for _, r := range rawList {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}
	}
	for _, field := range required {
		if _, exists := args[field]; !exists {
			return fmt.Errorf("required field %q is missing", field)
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for field, value := range args {
		propSchema, ok := properties[field].(map[string]any)
		if !ok {
			continue
		}
		expected, _ := propSchema["type"].(string)
		if expected != "" && !matchesType(value, expected) {
			return fmt.Errorf("field %q: expected type %s, got %T", field, expected, value)
		}
	}

	return nil
}

func matchesType(value any, expected string) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "number", "integer":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
