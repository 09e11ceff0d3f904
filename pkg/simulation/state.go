package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HistoryLimit is the number of snapshots retained per simulator
const HistoryLimit = 10

var (
	ErrEmptyHistory = errors.New("history is empty")
	ErrHistoryIndex = errors.New("history index out of range")
)

// SimulatorState is the mutable record behind one simulator widget
type SimulatorState struct {
	Content     *Content
	Steps       []Step
	CurrentStep int
	// Running is set while the algorithm executes. Exclusion comes from the
	// controller's mutex, not from this flag.
	Running bool
	Data    map[string]any
	History *History
}

func newSimulatorState(content *Content) *SimulatorState {
	return &SimulatorState{
		Content: content,
		Data:    make(map[string]any),
		History: NewHistory(HistoryLimit),
	}
}

// clearTransient drops steps, cursor and scratch data; history survives
func (s *SimulatorState) clearTransient() {
	s.Steps = nil
	s.CurrentStep = 0
	s.Data = make(map[string]any)
}

// Snapshot is the serialized form of the scratch data and cursor
type Snapshot struct {
	Data        map[string]any `json:"data"`
	CurrentStep int            `json:"currentStep"`
}

// EncodeSnapshot serializes a snapshot. Data holding values JSON cannot
// represent (functions, channels, cycles) fails.
func EncodeSnapshot(s Snapshot) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshot parses a serialized snapshot
func DecodeSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	return s, nil
}

// History is a FIFO of serialized snapshots bounded by limit
type History struct {
	limit   int
	entries []string
}

// NewHistory creates a history that keeps at most limit entries
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push encodes and appends a snapshot, evicting the oldest entries past the
// limit. On an encoding error the history is left untouched.
func (h *History) Push(s Snapshot) error {
	raw, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	h.entries = append(h.entries, raw)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
	return nil
}

// Len returns the number of stored snapshots
func (h *History) Len() int { return len(h.entries) }

// Limit returns the capacity of the history
func (h *History) Limit() int { return h.limit }

// At decodes the entry at index. Negative indices count back from the most
// recent entry, so -1 is the latest snapshot.
func (h *History) At(index int) (Snapshot, error) {
	if len(h.entries) == 0 {
		return Snapshot{}, ErrEmptyHistory
	}
	i := index
	if i < 0 {
		i += len(h.entries)
	}
	if i < 0 || i >= len(h.entries) {
		return Snapshot{}, fmt.Errorf("%w: %d of %d", ErrHistoryIndex, index, len(h.entries))
	}
	return DecodeSnapshot(h.entries[i])
}

// Raw returns a copy of the serialized entries, oldest first
func (h *History) Raw() []string {
	return append([]string(nil), h.entries...)
}
