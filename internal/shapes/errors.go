// Package shapes implements shape inference for layer construction and the
// error taxonomy shared by the tensor, layer and graph packages.
package shapes

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the engine matches exactly one of
// them with errors.Is.
var (
	ErrShape           = errors.New("shape mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnbound         = errors.New("unbound input")
	ErrUnsupported     = errors.New("unsupported")
)

// ShapeError reports dimensions that are incompatible with an operation.
type ShapeError struct {
	Op     string // Operation that rejected the shapes (e.g., "dense", "matmul")
	Want   []int  // Expected shape, nil when not applicable
	Got    []int  // Offending shape
	Detail string // Additional details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	switch {
	case e.Want != nil:
		return fmt.Sprintf("%s: %v: expected %v, got %v", e.Op, ErrShape, e.Want, e.Got)
	case e.Detail != "" && e.Got != nil:
		return fmt.Sprintf("%s: %v: %s (shape %v)", e.Op, ErrShape, e.Detail, e.Got)
	case e.Detail != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, ErrShape, e.Detail)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, ErrShape, e.Got)
	}
}

// Is makes errors.Is(err, ErrShape) hold for every ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// Mismatch returns a ShapeError for a shape that differs from the expected one.
func Mismatch(op string, want, got []int) error {
	return &ShapeError{Op: op, Want: clone(want), Got: clone(got)}
}

// Incompatible returns a ShapeError with a free-form explanation.
func Incompatible(op string, got []int, format string, args ...any) error {
	return &ShapeError{Op: op, Got: clone(got), Detail: fmt.Sprintf(format, args...)}
}

// Invalid returns an error wrapping ErrInvalidArgument.
func Invalid(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func clone(s []int) []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}
