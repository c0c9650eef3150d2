package avatar

import (
	"errors"
	"fmt"
)

// ErrPaused is returned when the kill switch is engaged. No record is created
// or mutated in that case.
var ErrPaused = errors.New("generation is paused")

// StageError marks a hard failure of a pipeline stage. Only the image
// synthesis and asset upload stages produce it; the earlier stages degrade to
// fallbacks instead of failing.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
