package simulation

import (
	"fmt"
	"strconv"
	"strings"
)

// RunContext is handed to an algorithm for the duration of one run
type RunContext struct {
	// Controls holds the current value of every control that has an input
	Controls map[string]string
	// State is the live simulator state; State.Data is free scratch space
	State *SimulatorState

	ctl *Controller
}

// Log writes to the simulator's log surface
func (rc *RunContext) Log(typ LogType, message string) {
	rc.ctl.log(typ, message)
}

// AddStep appends a step to the run's output
func (rc *RunContext) AddStep(step Step) {
	rc.State.Steps = append(rc.State.Steps, step)
}

// String returns the trimmed control value, or def when it is missing or blank
func (rc *RunContext) String(id, def string) string {
	v, ok := rc.Controls[id]
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// Int parses a numeric control
func (rc *RunContext) Int(id string, def int) (int, error) {
	v := rc.String(id, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", id, v)
	}
	return n, nil
}

// Float parses a floating point control
func (rc *RunContext) Float(id string, def float64) (float64, error) {
	v := rc.String(id, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", id, v)
	}
	return f, nil
}

// Ints parses a comma or whitespace separated list of integers
func (rc *RunContext) Ints(id string, def []int) ([]int, error) {
	v := rc.String(id, "")
	if v == "" {
		return append([]int(nil), def...), nil
	}
	return ParseInts(v)
}

// ParseInts parses "5, 3 8,1" style integer lists
func ParseInts(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}
