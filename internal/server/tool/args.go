package tool

import (
	"fmt"
	"strings"
)

// ArgumentError reports a missing or malformed tool argument
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// String returns a required, non-blank string argument
func String(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", &ArgumentError{Name: name, Reason: "is required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Name: name, Reason: fmt.Sprintf("must be a string, got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ArgumentError{Name: name, Reason: "must not be empty"}
	}
	return s, nil
}

// OptionalString returns a string argument, or nil when absent
func OptionalString(args map[string]any, name string) (*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &ArgumentError{Name: name, Reason: fmt.Sprintf("must be a string, got %T", v)}
	}
	return &s, nil
}

// Bool returns a boolean argument, false when absent. The strings "true" and
// "false" are accepted as well.
func Bool(args map[string]any, name string) (bool, error) {
	switch v := args[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, nil
		case "false", "":
			return false, nil
		}
	}
	return false, &ArgumentError{Name: name, Reason: "must be a boolean"}
}
