package simulation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/algorithm-simulations/pkg/logger"
)

// StepResult reports what a call to Step did
type StepResult int

const (
	StepAdvanced StepResult = iota
	StepComplete
)

// Log messages written by the controller
const (
	msgStarting = "Starting simulation..."
	msgComplete = "Simulation complete!"
	msgReset    = "Simulation reset. Adjust the controls and run again."
)

// Option configures a Controller
type Option func(*Controller)

// WithControls sets where control values are read from at run time
func WithControls(src ControlSource) Option {
	return func(c *Controller) { c.controls = src }
}

// WithDisplay sets the visualization/stat surfaces
func WithDisplay(d Display) Option {
	return func(c *Controller) {
		if d != nil {
			c.display = d
		}
	}
}

// WithLogSink sets the user-visible log. Without one, entries go to the
// diagnostic logger.
func WithLogSink(sink LogSink) Option {
	return func(c *Controller) { c.sink = sink }
}

// WithLogger sets the diagnostic logger
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.diag = l
		}
	}
}

// WithClock overrides the time source used for log timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

type nopDisplay struct{}

func (nopDisplay) ClearVisualization(string) {}
func (nopDisplay) SetStat(string, string)    {}
func (nopDisplay) SetStepEnabled(bool)       {}

// Controller drives one simulator widget through run, step and reset.
// All public methods are serialized; algorithms and visualizers run while
// the lock is held and must not call back into the controller.
type Controller struct {
	mu sync.Mutex

	id        uuid.UUID
	content   *Content
	algorithm AlgorithmFn
	state     *SimulatorState

	controls ControlSource
	display  Display
	sink     LogSink
	diag     logger.Logger
	now      func() time.Time

	stepEnabled bool
}

// NewController builds a controller for content, resolving its algorithm
// through registry. An unresolved algorithm leaves the controller disabled.
func NewController(content *Content, registry *Registry, opts ...Option) *Controller {
	if content == nil {
		content = &Content{}
	}
	c := &Controller{
		id:      uuid.New(),
		content: content,
		state:   newSimulatorState(content),
		display: nopDisplay{},
		diag:    logger.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.diag = c.diag.WithPrefix(content.Name).WithField("session", c.id.String()[:8])

	if registry == nil {
		registry = NewRegistry()
	}
	c.algorithm = registry.Resolve(content.Algorithm)
	if c.algorithm == nil {
		c.diag.Warnf("algorithm %q not found, simulator disabled", content.Algorithm.String())
	}

	return c
}

// ID returns the controller's session id
func (c *Controller) ID() uuid.UUID { return c.id }

// Content returns the descriptor the controller was built from
func (c *Controller) Content() *Content { return c.content }

// Enabled reports whether an algorithm was resolved
func (c *Controller) Enabled() bool { return c.algorithm != nil }

// Run snapshots the scratch state, clears everything and computes a fresh
// list of steps from the current control values.
func (c *Controller) Run() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.algorithm == nil {
		return
	}

	c.saveState()
	c.state.clearTransient()
	c.clearVisualizations()
	if c.sink != nil {
		c.sink.Clear()
	}
	c.log(LogInfo, msgStarting)

	rc := &RunContext{
		Controls: c.readControls(),
		State:    c.state,
		ctl:      c,
	}

	batch, err := c.invoke(rc)
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) && runErr.Partial != nil {
			c.state.Steps = append([]Step(nil), runErr.Partial...)
		}
		c.log(LogError, "Error: "+err.Error())
		c.diag.Errorf("algorithm failed after %d steps: %v", len(c.state.Steps), err)
	} else if batch != nil && batch.Steps != nil {
		c.state.Steps = append([]Step(nil), batch.Steps...)
	}

	c.log(LogSuccess, fmt.Sprintf("Generated %d steps. Step forward to advance.", len(c.state.Steps)))
	c.setStepEnabled(true)
}

func (c *Controller) invoke(rc *RunContext) (batch *StepBatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			batch, err = nil, panicError(r)
		}
	}()

	c.state.Running = true
	defer func() { c.state.Running = false }()

	return c.algorithm(rc)
}

func (c *Controller) readControls() map[string]string {
	values := make(map[string]string, len(c.content.Controls))
	if c.controls == nil {
		return values
	}
	for _, ctl := range c.content.Controls {
		if v, ok := c.controls.ControlValue(ctl.ID); ok {
			values[ctl.ID] = v
		}
	}
	return values
}

// Step plays the next step, or reports completion once the cursor has
// reached the end.
func (c *Controller) Step() StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CurrentStep >= len(c.state.Steps) {
		c.log(LogSuccess, msgComplete)
		c.setStepEnabled(false)
		return StepComplete
	}

	step := c.state.Steps[c.state.CurrentStep]

	if c.content.Visualizer != nil {
		c.visualize(step)
	}

	if len(step.Stats) > 0 {
		ids := make([]string, 0, len(step.Stats))
		for id := range step.Stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c.display.SetStat(id, step.Stats[id])
		}
	}

	if step.Message != "" {
		typ := step.Type
		if typ == "" {
			typ = LogInfo
		}
		c.log(typ, step.Message)
	}

	c.state.CurrentStep++
	return StepAdvanced
}

func (c *Controller) visualize(step Step) {
	defer func() {
		if r := recover(); r != nil {
			c.diag.Errorf("visualizer failed at step %d: %v", c.state.CurrentStep, panicError(r))
		}
	}()
	c.content.Visualizer(step, c.state)
}

// Reset returns the simulator to idle. History is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.clearTransient()
	c.clearVisualizations()
	if c.sink != nil {
		c.sink.Clear()
	}
	for _, s := range c.content.Stats {
		c.display.SetStat(s.ID, s.InitialValue())
	}
	c.setStepEnabled(false)
	c.log(LogInfo, msgReset)
}

// Log appends an entry to the log surface
func (c *Controller) Log(typ LogType, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log(typ, message)
}

func (c *Controller) log(typ LogType, message string) {
	entry := LogEntry{Time: c.now(), Type: typ, Message: message}
	if c.sink != nil {
		c.sink.Append(entry)
		return
	}

	line := fmt.Sprintf("[%s] %s", entry.Timestamp(), message)
	switch typ {
	case LogError:
		c.diag.Error(line)
	case LogWarning:
		c.diag.Warn(line)
	default:
		c.diag.Info(line)
	}
}

func (c *Controller) clearVisualizations() {
	for _, v := range c.content.Visualizations {
		c.display.ClearVisualization(v.ID)
	}
}

func (c *Controller) setStepEnabled(enabled bool) {
	c.stepEnabled = enabled
	c.display.SetStepEnabled(enabled)
}

// SaveState appends a snapshot of the scratch data and cursor to history
func (c *Controller) SaveState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saveState()
}

func (c *Controller) saveState() {
	err := c.state.History.Push(Snapshot{
		Data:        c.state.Data,
		CurrentStep: c.state.CurrentStep,
	})
	if err != nil {
		c.diag.Warnf("failed to save state: %v", err)
	}
}

// RestoreState merges the snapshot at index (negative counts from the most
// recent, -1 being the latest) into the live state. It reports whether a
// snapshot was applied.
func (c *Controller) RestoreState(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.History.Len() == 0 {
		return false
	}

	snap, err := c.state.History.At(index)
	if err != nil {
		c.diag.Warnf("failed to restore state: %v", err)
		return false
	}

	c.state.Data = snap.Data
	c.state.CurrentStep = min(max(snap.CurrentStep, 0), len(c.state.Steps))
	return true
}

// History decodes every stored snapshot, oldest first
func (c *Controller) History() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw := c.state.History.Raw()
	out := make([]Snapshot, 0, len(raw))
	for _, r := range raw {
		snap, err := DecodeSnapshot(r)
		if err != nil {
			c.diag.Warnf("skipping unreadable snapshot: %v", err)
			continue
		}
		out = append(out, snap)
	}
	return out
}

// Status is a point-in-time copy of a controller's observable state
type Status struct {
	Steps       []Step
	CurrentStep int
	Data        map[string]any
	HistoryLen  int
	StepEnabled bool
	Running     bool
}

// Done reports whether every step has been played
func (s Status) Done() bool { return s.CurrentStep >= len(s.Steps) }

// Status returns a copy of the current state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := make(map[string]any, len(c.state.Data))
	for k, v := range c.state.Data {
		data[k] = v
	}
	return Status{
		Steps:       append([]Step(nil), c.state.Steps...),
		CurrentStep: c.state.CurrentStep,
		Data:        data,
		HistoryLen:  c.state.History.Len(),
		StepEnabled: c.stepEnabled,
		Running:     c.state.Running,
	}
}
