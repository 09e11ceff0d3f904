package simulation

import (
	"errors"
	"fmt"
	"time"
)

// LogType is the severity tag carried by a log entry
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

// Step is one unit of simulated progress. The controller only looks at
// Message, Type and Stats; Payload belongs to the visualizer.
type Step struct {
	Message string
	Type    LogType
	Stats   map[string]string
	Payload any
}

// Panels is the conventional payload: rendered text per visualization id
type Panels map[string]string

// StepBatch is what an algorithm returns when it produces steps in bulk.
// A non-nil Steps slice replaces anything added through AddStep.
type StepBatch struct {
	Steps []Step
}

// AlgorithmFn computes the steps of a simulation from the current controls.
// Returning (nil, nil) means every step was emitted through AddStep.
type AlgorithmFn func(rc *RunContext) (*StepBatch, error)

// RunError lets an algorithm hand back the steps it managed to produce
// before failing. Partial, when non-nil, replaces the AddStep output.
type RunError struct {
	Partial []Step
	Err     error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return "algorithm failed"
	}
	return e.Err.Error()
}

func (e *RunError) Unwrap() error { return e.Err }

// ErrAlgorithmPanic wraps a panic recovered from an algorithm or visualizer
var ErrAlgorithmPanic = errors.New("panic")

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrAlgorithmPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrAlgorithmPanic, v)
}

// Visualizer applies a step's payload to the visualization surfaces
type Visualizer func(step Step, state *SimulatorState)

// ControlSource reads the current value of a control input by id
type ControlSource interface {
	ControlValue(id string) (string, bool)
}

// Display is the set of visual surfaces a controller drives. Unknown ids
// must be ignored by implementations.
type Display interface {
	ClearVisualization(id string)
	SetStat(id, value string)
	SetStepEnabled(enabled bool)
}

// LogEntry is a single line appended to the log surface
type LogEntry struct {
	Time    time.Time
	Type    LogType
	Message string
}

// Timestamp renders the entry's local time of day
func (e LogEntry) Timestamp() string {
	return e.Time.Local().Format("15:04:05")
}

// LogSink is the append-only, user-visible log surface
type LogSink interface {
	Clear()
	Append(entry LogEntry)
}
