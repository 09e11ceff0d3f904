package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/algorithm-simulations/pkg/trace"
)

// ErrNoRun is returned when a step is recorded before Begin
var ErrNoRun = errors.New("no run in progress")

// Recorder archives the runs of one simulator session. Each Begin opens a
// new archived run, so steps of different runs never mix.
type Recorder struct {
	store     *Store
	simulator string
	now       func() time.Time
	runID     string
}

// NewRecorder records runs of simulator into store
func NewRecorder(store *Store, simulator string) *Recorder {
	return &Recorder{store: store, simulator: simulator, now: time.Now}
}

// Begin starts a new archived run with the given control values and
// returns its id
func (r *Recorder) Begin(ctx context.Context, controls map[string]string) (string, error) {
	run := Run{
		ID:        uuid.NewString(),
		Simulator: r.simulator,
		StartedAt: r.now(),
		Controls:  controls,
	}
	if err := r.store.StartRun(ctx, run); err != nil {
		r.runID = ""
		return "", err
	}
	r.runID = run.ID
	return run.ID, nil
}

// RunID returns the id of the current run, empty before Begin
func (r *Recorder) RunID() string { return r.runID }

// Record stores a played step under the current run
func (r *Recorder) Record(ctx context.Context, rec trace.Record) error {
	if r.runID == "" {
		return ErrNoRun
	}
	rec.Session = r.runID
	rec.Simulator = r.simulator
	return r.store.AppendStep(ctx, rec)
}
