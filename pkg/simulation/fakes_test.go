package simulation

import (
	"bytes"
	"time"

	"github.com/picogrid/algorithm-simulations/pkg/logger"
)

// recordingSurface is an in-memory stand-in for the rendered widget
type recordingSurface struct {
	inputs      map[string]string
	stats       map[string]string
	statWrites  []string
	cleared     []string
	entries     []LogEntry
	logClears   int
	stepEnabled bool
	statIDs     map[string]bool
}

func newRecordingSurface(content *Content) *recordingSurface {
	s := &recordingSurface{
		inputs:  make(map[string]string),
		stats:   make(map[string]string),
		statIDs: make(map[string]bool),
	}
	for _, st := range content.Stats {
		s.statIDs[st.ID] = true
		s.stats[st.ID] = st.InitialValue()
	}
	return s
}

func (s *recordingSurface) ControlValue(id string) (string, bool) {
	v, ok := s.inputs[id]
	return v, ok
}

func (s *recordingSurface) ClearVisualization(id string) { s.cleared = append(s.cleared, id) }

func (s *recordingSurface) SetStat(id, value string) {
	if !s.statIDs[id] {
		return
	}
	s.stats[id] = value
	s.statWrites = append(s.statWrites, id+"="+value)
}

func (s *recordingSurface) SetStepEnabled(enabled bool) { s.stepEnabled = enabled }

func (s *recordingSurface) Clear() {
	s.entries = nil
	s.logClears++
}

func (s *recordingSurface) Append(entry LogEntry) { s.entries = append(s.entries, entry) }

func (s *recordingSurface) messages() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = string(e.Type) + ":" + e.Message
	}
	return out
}

func (s *recordingSurface) last() LogEntry {
	if len(s.entries) == 0 {
		return LogEntry{}
	}
	return s.entries[len(s.entries)-1]
}

func (s *recordingSurface) hasType(typ LogType) bool {
	for _, e := range s.entries {
		if e.Type == typ {
			return true
		}
	}
	return false
}

type harness struct {
	ctl     *Controller
	surface *recordingSurface
	diag    *bytes.Buffer
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)
}

func newHarness(content *Content, reg *Registry) *harness {
	surface := newRecordingSurface(content)
	diag := &bytes.Buffer{}
	ctl := NewController(content, reg,
		WithControls(surface),
		WithDisplay(surface),
		WithLogSink(surface),
		WithLogger(logger.NewWithConfig(logger.Config{Level: logger.DebugLevel, Writer: diag, NoColor: true})),
		WithClock(fixedClock),
	)
	return &harness{ctl: ctl, surface: surface, diag: diag}
}

func contentFor(name string) *Content {
	return &Content{
		Name:      name,
		Algorithm: ByName(name),
		Stats: []Stat{
			{ID: "comparisons", Label: "Comparisons"},
			{ID: "swaps", Label: "Swaps", Initial: "-"},
		},
		Visualizations: []Visualization{
			{ID: "array", Label: "Array"},
		},
	}
}
