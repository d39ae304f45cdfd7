package tasks

import (
	"errors"
	"fmt"

	"github.com/tgienger/erii/internal/models"
)

var (
	// ErrInvalidIndex is returned when an index is outside the task list.
	ErrInvalidIndex = errors.New("invalid task number")

	// ErrUnsupportedOperation is returned when an operation does not apply to a task's kind.
	ErrUnsupportedOperation = errors.New("operation not supported for this task type")
)

// IndexError carries the offending zero-based index and the list size at the
// time. Its message uses the 1-based task number.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %d (have %d tasks)", ErrInvalidIndex, e.Index+1, e.Size)
}

func (e *IndexError) Unwrap() error {
	return ErrInvalidIndex
}

func invalidIndex(index, size int) error {
	return &IndexError{Index: index, Size: size}
}

func unsupported(op string, kind models.Kind) error {
	return fmt.Errorf("%w: cannot %s a %q task", ErrUnsupportedOperation, op, kind)
}
