package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("collaborator unavailable")
	ErrIntegrity     = errors.New("data integrity error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Category groups errors the way callers react to them.
type Category string

const (
	// CategoryInput covers invalid room IDs, out-of-range indexes and malformed
	// requests. Nothing was mutated.
	CategoryInput Category = "input"
	// CategoryUnavailable covers analyzer/estimator failures and timeouts.
	CategoryUnavailable Category = "unavailable"
	// CategoryIntegrity covers oversize or corrupt persisted state.
	CategoryIntegrity Category = "integrity"
	// CategoryInternal is everything else.
	CategoryInternal Category = "internal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto the session error taxonomy.
func Classify(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return CategoryInput
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return CategoryUnavailable
	case errors.Is(err, ErrIntegrity):
		return CategoryIntegrity
	default:
		return CategoryInternal
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
