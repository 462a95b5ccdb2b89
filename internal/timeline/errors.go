package timeline

import (
	"errors"
	"fmt"
)

// ErrInsufficientInputs is returned when fewer than two clips are given
var ErrInsufficientInputs = errors.New("need at least two clips to create transitions")

// TransitionCountMismatchError is returned when an explicit transition
// list does not have one entry per clip
type TransitionCountMismatchError struct {
	Clips       int
	Transitions int
}

func (e *TransitionCountMismatchError) Error() string {
	return fmt.Sprintf("transition list length %d must equal clip count %d", e.Transitions, e.Clips)
}

// ProbeError reports a failed duration lookup for one clip
type ProbeError struct {
	Index int
	Clip  string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe clip %d (%s): %v", e.Index, e.Clip, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was raised before any clip was probed
func IsValidation(err error) bool {
	var mismatch *TransitionCountMismatchError
	return errors.Is(err, ErrInsufficientInputs) || errors.As(err, &mismatch)
}
