package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/climbr/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrEmptyWallSet   = errors.New("wall set has no routes")
	ErrInvalidWallSet = errors.New("invalid wall set")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExportDocument checks a wall set before it is saved.
func validateExportDocument(doc model.ExportDocument) error {
	if len(doc.WallSet) == 0 {
		return ErrEmptyWallSet
	}
	if doc.Created.IsZero() {
		return fmt.Errorf("%w: missing created timestamp", ErrInvalidWallSet)
	}
	for i, r := range doc.WallSet {
		if strings.TrimSpace(r.ColorName) == "" {
			return fmt.Errorf("%w: route %d has no colour name", ErrInvalidWallSet, i)
		}
	}
	return nil
}
