package simulation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBubbleSortScenario(t *testing.T) {
	reg := NewRegistry()
	reg.Register("bubble-sort", func(rc *RunContext) (*StepBatch, error) {
		for i := 0; i < 5; i++ {
			rc.AddStep(Step{Message: "swap", Stats: map[string]string{"comparisons": "1"}})
		}
		return nil, nil
	})

	h := newHarness(contentFor("bubble-sort"), reg)
	h.ctl.Run()

	if !h.surface.stepEnabled {
		t.Error("Expected stepping to be enabled after run")
	}

	for i := 1; i <= 5; i++ {
		h.surface.stats["comparisons"] = ""
		if res := h.ctl.Step(); res != StepAdvanced {
			t.Fatalf("Step %d: expected advance, got %v", i, res)
		}
		if got := h.ctl.Status().CurrentStep; got != i {
			t.Errorf("Step %d: expected cursor %d, got %d", i, i, got)
		}
		if got := h.surface.stats["comparisons"]; got != "1" {
			t.Errorf("Step %d: expected comparisons=1, got %q", i, got)
		}
		if last := h.surface.last(); last.Type != LogInfo || last.Message != "swap" {
			t.Errorf("Step %d: expected info log 'swap', got %+v", i, last)
		}
	}

	if res := h.ctl.Step(); res != StepComplete {
		t.Errorf("Expected completion on sixth step, got %v", res)
	}
	if got := h.ctl.Status().CurrentStep; got != 5 {
		t.Errorf("Expected cursor to stay at 5, got %d", got)
	}
	if last := h.surface.last(); last.Type != LogSuccess || last.Message != msgComplete {
		t.Errorf("Expected completion log, got %+v", last)
	}
	if h.surface.stepEnabled {
		t.Error("Expected stepping to be disabled after completion")
	}
}

func TestReturnedStepsReplaceAddStep(t *testing.T) {
	reg := NewRegistry()
	reg.Register("both", func(rc *RunContext) (*StepBatch, error) {
		rc.AddStep(Step{Message: "ignored"})
		return &StepBatch{Steps: []Step{{Message: "a"}, {Message: "b"}}}, nil
	})

	h := newHarness(contentFor("both"), reg)
	h.ctl.Run()

	steps := h.ctl.Status().Steps
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].Message != "a" || steps[1].Message != "b" {
		t.Errorf("Expected returned steps, got %+v", steps)
	}
}

func TestHistoryBoundedAcrossRuns(t *testing.T) {
	reg := NewRegistry()
	runs := 0
	reg.Register("trivial", func(rc *RunContext) (*StepBatch, error) {
		runs++
		rc.State.Data["run"] = runs
		return nil, nil
	})

	h := newHarness(contentFor("trivial"), reg)
	for i := 0; i < 11; i++ {
		h.ctl.Run()
		if n := h.ctl.Status().HistoryLen; n > HistoryLimit {
			t.Fatalf("History grew to %d entries", n)
		}
	}

	history := h.ctl.History()
	if len(history) != HistoryLimit {
		t.Fatalf("Expected %d snapshots, got %d", HistoryLimit, len(history))
	}
	// The first run snapshotted empty data; it must have been evicted.
	for i, snap := range history {
		want := float64(i + 1)
		if got := snap.Data["run"]; got != want {
			t.Errorf("Snapshot %d: expected run %v, got %v", i, want, got)
		}
	}
}

func TestRunResetsCursor(t *testing.T) {
	reg := NewRegistry()
	reg.Register("three", constAlgorithm(3))

	h := newHarness(contentFor("three"), reg)
	h.ctl.Run()
	h.ctl.Step()
	h.ctl.Step()
	if got := h.ctl.Status().CurrentStep; got != 2 {
		t.Fatalf("Expected cursor 2, got %d", got)
	}

	h.ctl.Run()
	if got := h.ctl.Status().CurrentStep; got != 0 {
		t.Errorf("Expected cursor 0 after run, got %d", got)
	}
	if snap := h.ctl.History()[1]; snap.CurrentStep != 2 {
		t.Errorf("Expected snapshot of cursor 2, got %d", snap.CurrentStep)
	}
}

func TestFailureKeepsPartialSteps(t *testing.T) {
	reg := NewRegistry()
	reg.Register("fails", func(rc *RunContext) (*StepBatch, error) {
		for i := 0; i < 3; i++ {
			rc.AddStep(Step{Message: "ok"})
		}
		return nil, errors.New("boom")
	})

	h := newHarness(contentFor("fails"), reg)
	h.ctl.Run()

	status := h.ctl.Status()
	if len(status.Steps) != 3 {
		t.Errorf("Expected 3 partial steps, got %d", len(status.Steps))
	}
	if status.CurrentStep != 0 {
		t.Errorf("Expected cursor 0, got %d", status.CurrentStep)
	}
	if !h.surface.hasType(LogError) {
		t.Errorf("Expected an error log entry, got %v", h.surface.messages())
	}
	if !strings.Contains(strings.Join(h.surface.messages(), "\n"), "error:Error: boom") {
		t.Errorf("Expected failure message in log, got %v", h.surface.messages())
	}
	if !strings.Contains(h.diag.String(), "boom") {
		t.Errorf("Expected failure on diagnostic channel, got %q", h.diag.String())
	}

	// The widget stays usable.
	if h.ctl.Step() != StepAdvanced {
		t.Error("Expected partial steps to be playable")
	}
}

func TestPanicKeepsPartialSteps(t *testing.T) {
	reg := NewRegistry()
	reg.Register("panics", func(rc *RunContext) (*StepBatch, error) {
		rc.AddStep(Step{Message: "one"})
		rc.AddStep(Step{Message: "two"})
		if len(rc.Controls) == 0 {
			panic("tree corrupted")
		}
		return nil, nil
	})

	h := newHarness(contentFor("panics"), reg)
	h.ctl.Run()

	status := h.ctl.Status()
	if len(status.Steps) != 2 {
		t.Errorf("Expected 2 partial steps, got %d", len(status.Steps))
	}
	if status.Running {
		t.Error("Expected running flag to be cleared after a panic")
	}
	if !h.surface.hasType(LogError) {
		t.Error("Expected error log entry after panic")
	}
}

func TestRunErrorCarriesExplicitPartial(t *testing.T) {
	reg := NewRegistry()
	reg.Register("explicit", func(rc *RunContext) (*StepBatch, error) {
		rc.AddStep(Step{Message: "discarded"})
		return nil, &RunError{
			Partial: []Step{{Message: "kept-1"}, {Message: "kept-2"}},
			Err:     errors.New("ran out of input"),
		}
	})

	h := newHarness(contentFor("explicit"), reg)
	h.ctl.Run()

	steps := h.ctl.Status().Steps
	if len(steps) != 2 || steps[0].Message != "kept-1" {
		t.Errorf("Expected explicit partial steps, got %+v", steps)
	}
}

func TestRunLogOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("logs", func(rc *RunContext) (*StepBatch, error) {
		rc.Log(LogWarning, "from algorithm")
		return &StepBatch{Steps: []Step{{}}}, nil
	})

	h := newHarness(contentFor("logs"), reg)
	h.surface.entries = []LogEntry{{Message: "stale"}}
	h.ctl.Run()

	want := []string{
		"info:" + msgStarting,
		"warning:from algorithm",
		"success:Generated 1 steps. Step forward to advance.",
	}
	if got := h.surface.messages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(h.surface.cleared, []string{"array"}) {
		t.Errorf("Expected visualization 'array' cleared, got %v", h.surface.cleared)
	}
	if h.surface.last().Timestamp() != "14:05:09" {
		t.Errorf("Unexpected timestamp %q", h.surface.last().Timestamp())
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("one", constAlgorithm(1))

	h := newHarness(contentFor("one"), reg)
	h.ctl.Run()
	h.ctl.Step()

	before := len(h.surface.entries)
	for i := 0; i < 3; i++ {
		if h.ctl.Step() != StepComplete {
			t.Fatal("Expected completion")
		}
		if got := h.ctl.Status().CurrentStep; got != 1 {
			t.Errorf("Expected cursor to stay at 1, got %d", got)
		}
	}
	added := h.surface.entries[before:]
	if len(added) != 3 {
		t.Fatalf("Expected 3 completion entries, got %d", len(added))
	}
	for _, e := range added {
		if e.Type != LogSuccess || e.Message != msgComplete {
			t.Errorf("Unexpected entry %+v", e)
		}
	}
}

func TestStepWithNoSteps(t *testing.T) {
	h := newHarness(contentFor("never-registered"), NewRegistry())

	if h.ctl.Step() != StepComplete {
		t.Error("Expected completion when there are no steps")
	}
	if h.ctl.Status().CurrentStep != 0 {
		t.Error("Expected cursor to remain 0")
	}
}

func TestResetClearsButKeepsHistory(t *testing.T) {
	reg := NewRegistry()
	reg.Register("work", func(rc *RunContext) (*StepBatch, error) {
		rc.State.Data["scratch"] = "x"
		rc.AddStep(Step{Stats: map[string]string{"comparisons": "7", "swaps": "2"}})
		return nil, nil
	})

	h := newHarness(contentFor("work"), reg)
	h.ctl.Run()
	h.ctl.Run()
	h.ctl.Step()
	historyBefore := h.ctl.History()

	h.ctl.Reset()

	status := h.ctl.Status()
	if len(status.Steps) != 0 || status.CurrentStep != 0 || len(status.Data) != 0 {
		t.Errorf("Expected cleared state, got %+v", status)
	}
	if h.surface.stats["comparisons"] != "0" || h.surface.stats["swaps"] != "-" {
		t.Errorf("Expected initial stat values, got %v", h.surface.stats)
	}
	if h.surface.stepEnabled || status.StepEnabled {
		t.Error("Expected stepping disabled after reset")
	}
	if !reflect.DeepEqual(h.ctl.History(), historyBefore) {
		t.Error("Expected history to survive reset")
	}
	if got := h.surface.messages(); !reflect.DeepEqual(got, []string{"info:" + msgReset}) {
		t.Errorf("Expected only the reset message, got %v", got)
	}
}

func TestStatsForUnknownSurfacesAreSkipped(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stats", func(rc *RunContext) (*StepBatch, error) {
		return &StepBatch{Steps: []Step{{Stats: map[string]string{"missing": "9", "swaps": "4"}}}}, nil
	})

	h := newHarness(contentFor("stats"), reg)
	h.ctl.Run()
	h.ctl.Step()

	if !reflect.DeepEqual(h.surface.statWrites, []string{"swaps=4"}) {
		t.Errorf("Expected only swaps written, got %v", h.surface.statWrites)
	}
}

func TestControlsAreReadAtRun(t *testing.T) {
	content := contentFor("echo")
	content.Controls = []Control{
		{ID: "size", Type: ControlNumber},
		{ID: "mode", Type: ControlSelect, Options: []string{"a", "b"}},
		{ID: "absent", Type: ControlText},
	}

	var seen map[string]string
	reg := NewRegistry()
	reg.Register("echo", func(rc *RunContext) (*StepBatch, error) {
		seen = rc.Controls
		return nil, nil
	})

	h := newHarness(content, reg)
	h.surface.inputs["size"] = "12"
	h.surface.inputs["mode"] = "b"
	h.surface.inputs["undeclared"] = "x"
	h.ctl.Run()

	want := map[string]string{"size": "12", "mode": "b"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Expected %v, got %v", want, seen)
	}
}

func TestVisualizerReceivesEachStep(t *testing.T) {
	content := contentFor("viz")
	var got []any
	content.Visualizer = func(step Step, state *SimulatorState) {
		got = append(got, step.Payload)
		if state.Content != content {
			t.Error("Expected visualizer to see the live state")
		}
	}

	reg := NewRegistry()
	reg.Register("viz", func(rc *RunContext) (*StepBatch, error) {
		return &StepBatch{Steps: []Step{
			{Payload: Panels{"array": "[1 2]"}},
			{Payload: Panels{"array": "[2 1]"}},
		}}, nil
	})

	h := newHarness(content, reg)
	h.ctl.Run()
	h.ctl.Step()
	h.ctl.Step()

	want := []any{Panels{"array": "[1 2]"}, Panels{"array": "[2 1]"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestVisualizerPanicDoesNotStopStepping(t *testing.T) {
	content := contentFor("viz-panic")
	content.Visualizer = func(Step, *SimulatorState) { panic("bad payload") }

	reg := NewRegistry()
	reg.Register("viz-panic", constAlgorithm(2))

	h := newHarness(content, reg)
	h.ctl.Run()
	if h.ctl.Step() != StepAdvanced {
		t.Fatal("Expected step to advance despite visualizer panic")
	}
	if h.ctl.Status().CurrentStep != 1 {
		t.Error("Expected cursor to advance")
	}
	if !strings.Contains(h.diag.String(), "bad payload") {
		t.Errorf("Expected visualizer failure on diagnostic channel, got %q", h.diag.String())
	}
}

func TestUnresolvedAlgorithmDisablesController(t *testing.T) {
	h := newHarness(contentFor("nonexistent-algo"), NewRegistry())

	if h.ctl.Enabled() {
		t.Error("Expected controller to be disabled")
	}
	if !strings.Contains(h.diag.String(), `algorithm "nonexistent-algo" not found`) {
		t.Errorf("Expected warning, got %q", h.diag.String())
	}

	h.ctl.Run()

	status := h.ctl.Status()
	if len(status.Steps) != 0 || status.HistoryLen != 0 || status.StepEnabled {
		t.Errorf("Expected run to be a no-op, got %+v", status)
	}
	if len(h.surface.entries) != 0 {
		t.Errorf("Expected no log entries, got %v", h.surface.messages())
	}
}

func TestDirectAlgorithm(t *testing.T) {
	content := &Content{Name: "adhoc", Algorithm: Direct(constAlgorithm(4))}
	h := newHarness(content, nil)
	h.ctl.Run()

	if n := len(h.ctl.Status().Steps); n != 4 {
		t.Errorf("Expected 4 steps, got %d", n)
	}
}

func TestLogFallsBackToDiagnostics(t *testing.T) {
	h := newHarness(contentFor("x"), NewRegistry())
	h.ctl.sink = nil
	h.diag.Reset()

	h.ctl.Log(LogError, "no log panel")

	if !strings.Contains(h.diag.String(), "ERROR [x]") || !strings.Contains(h.diag.String(), "[14:05:09] no log panel") {
		t.Errorf("Expected fallback entry, got %q", h.diag.String())
	}
}

func TestSaveStateSkipsUnserializableData(t *testing.T) {
	reg := NewRegistry()
	reg.Register("closure", func(rc *RunContext) (*StepBatch, error) {
		rc.State.Data["callback"] = func() {}
		return nil, nil
	})

	h := newHarness(contentFor("closure"), reg)
	h.ctl.Run()
	if n := h.ctl.Status().HistoryLen; n != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", n)
	}

	h.ctl.Run()
	if n := h.ctl.Status().HistoryLen; n != 1 {
		t.Errorf("Expected unserializable snapshot to be skipped, history has %d", n)
	}
	if !strings.Contains(h.diag.String(), "failed to save state") {
		t.Errorf("Expected warning, got %q", h.diag.String())
	}
	if h.surface.hasType(LogWarning) {
		t.Error("Snapshot warnings must not reach the user-visible log")
	}
	if len(h.ctl.Status().Steps) != 0 || h.ctl.Status().CurrentStep != 0 {
		t.Error("Run must still proceed after a failed snapshot")
	}
}

func TestRestoreState(t *testing.T) {
	reg := NewRegistry()
	n := 0
	reg.Register("counter", func(rc *RunContext) (*StepBatch, error) {
		n++
		rc.State.Data["n"] = n
		return &StepBatch{Steps: make([]Step, 5)}, nil
	})

	h := newHarness(contentFor("counter"), reg)

	if h.ctl.RestoreState(-1) {
		t.Error("Expected restore on empty history to fail")
	}
	if h.diag.Len() != 0 {
		t.Errorf("Expected no side effects on empty history, got %q", h.diag.String())
	}

	h.ctl.Run()
	h.ctl.Step()
	h.ctl.Step()
	h.ctl.Run()

	if !h.ctl.RestoreState(-1) {
		t.Fatal("Expected restore of latest snapshot")
	}
	status := h.ctl.Status()
	if status.Data["n"] != float64(1) || status.CurrentStep != 2 {
		t.Errorf("Expected n=1 cursor=2, got %v cursor=%d", status.Data, status.CurrentStep)
	}
	if len(status.Steps) != 5 {
		t.Error("Restore must not touch steps")
	}

	if !h.ctl.RestoreState(0) {
		t.Fatal("Expected restore of oldest snapshot")
	}
	if status := h.ctl.Status(); len(status.Data) != 0 || status.CurrentStep != 0 {
		t.Errorf("Expected empty oldest snapshot, got %+v", status)
	}

	if h.ctl.RestoreState(7) {
		t.Error("Expected out-of-range restore to fail")
	}
	if !strings.Contains(h.diag.String(), "failed to restore state") {
		t.Errorf("Expected warning, got %q", h.diag.String())
	}
}

func TestRestoreStateClampsCursor(t *testing.T) {
	reg := NewRegistry()
	size := 4
	reg.Register("shrinking", func(rc *RunContext) (*StepBatch, error) {
		return &StepBatch{Steps: make([]Step, size)}, nil
	})

	h := newHarness(contentFor("shrinking"), reg)
	h.ctl.Run()
	for i := 0; i < 4; i++ {
		h.ctl.Step()
	}
	size = 1
	h.ctl.Run()

	if !h.ctl.RestoreState(-1) {
		t.Fatal("Expected restore to succeed")
	}
	if got := h.ctl.Status().CurrentStep; got != 1 {
		t.Errorf("Expected cursor clamped to 1, got %d", got)
	}
}

func TestRestoreStateUndecodableEntry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("counter", func(rc *RunContext) (*StepBatch, error) {
		rc.State.Data["n"] = 7
		return &StepBatch{Steps: make([]Step, 3)}, nil
	})

	h := newHarness(contentFor("counter"), reg)
	h.ctl.Run()
	h.ctl.Step()

	h.ctl.state.History.entries = append(h.ctl.state.History.entries, "{not json")
	h.diag.Reset()

	if h.ctl.RestoreState(-1) {
		t.Fatal("Expected restore of an undecodable entry to fail")
	}

	status := h.ctl.Status()
	if status.Data["n"] != 7 {
		t.Errorf("Expected data to be untouched, got %v", status.Data)
	}
	if status.CurrentStep != 1 {
		t.Errorf("Expected cursor to stay at 1, got %d", status.CurrentStep)
	}
	if !strings.Contains(h.diag.String(), "failed to restore state") {
		t.Errorf("Expected a restore warning, got %q", h.diag.String())
	}
}
