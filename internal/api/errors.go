package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound maps a backend 404 for lookups that are expected to miss.
	ErrNotFound = errors.New("not found")

	// ErrSessionExpired is returned after a 401. The stored credential has
	// already been cleared; the operator must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

const fallbackMessage = "An error occurred"

// Error is a normalized backend error: one HTTP status and one
// human-readable message regardless of the payload shape the backend chose.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// NormalizeMessage reduces the heterogeneous error bodies the backend emits
// (plain string, {error}, {detail}, {message}, {items: [...]}, field-keyed
// validation maps) to a single message. It is total: any input, including
// garbage, yields a non-empty string.
func NormalizeMessage(body []byte) string {
	if len(body) == 0 {
		return fallbackMessage
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return fallbackMessage
	}

	switch v := data.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		for _, key := range []string{"error", "detail", "message"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		if items, ok := v["items"]; ok {
			if raw, err := json.Marshal(items); err == nil {
				return string(raw)
			}
		}
		return firstFieldError(v)
	}
	return fallbackMessage
}

// firstFieldError renders the first field of a validation map as
// "field: message". Keys are sorted so the choice is deterministic.
func firstFieldError(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch val := fields[k].(type) {
		case string:
			if val != "" {
				return fmt.Sprintf("%s: %s", k, val)
			}
		case []any:
			if len(val) > 0 {
				if s, ok := val[0].(string); ok && s != "" {
					return fmt.Sprintf("%s: %s", k, s)
				}
			}
		}
	}
	return fallbackMessage
}
