package simulation

import (
	"reflect"
	"testing"
)

func constAlgorithm(n int) AlgorithmFn {
	return func(rc *RunContext) (*StepBatch, error) {
		steps := make([]Step, n)
		return &StepBatch{Steps: steps}, nil
	}
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Register("sort", constAlgorithm(1))
	reg.Register("sort", constAlgorithm(3))

	fn := reg.Resolve(ByName("sort"))
	if fn == nil {
		t.Fatal("Expected algorithm to resolve")
	}
	batch, _ := fn(&RunContext{State: newSimulatorState(&Content{})})
	if len(batch.Steps) != 3 {
		t.Errorf("Expected last registration to win with 3 steps, got %d", len(batch.Steps))
	}
}

func TestRegistryAllowsEmptyName(t *testing.T) {
	reg := NewRegistry()
	reg.Register("", constAlgorithm(1))

	if reg.Resolve(ByName("")) == nil {
		t.Error("Expected empty name to be a valid key")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	if fn := reg.Resolve(ByName("nonexistent-algo")); fn != nil {
		t.Error("Expected unknown name to resolve to nil")
	}

	called := false
	direct := func(rc *RunContext) (*StepBatch, error) {
		called = true
		return nil, nil
	}
	fn := reg.Resolve(Direct(direct))
	if fn == nil {
		t.Fatal("Expected direct function to pass through")
	}
	_, _ = fn(nil)
	if !called {
		t.Error("Expected resolved function to be the one passed in")
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	reg.Register("linked-list", constAlgorithm(0))
	reg.Register("bubble-sort", constAlgorithm(0))
	reg.Register("bst-insert", constAlgorithm(0))

	want := []string{"bst-insert", "bubble-sort", "linked-list"}
	if got := reg.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
