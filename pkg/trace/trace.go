// Package trace records played steps as CSV.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

// Record is one played step
type Record struct {
	Session   string `csv:"session"`
	Simulator string `csv:"simulator"`
	Step      int    `csv:"step"`
	Type      string `csv:"type"`
	Message   string `csv:"message"`
	Stats     string `csv:"stats"`
}

// NewRecord flattens a step. Stats are written as sorted "id=value" pairs.
func NewRecord(session, simulator string, index int, step simulation.Step) Record {
	typ := step.Type
	if typ == "" {
		typ = simulation.LogInfo
	}

	ids := make([]string, 0, len(step.Stats))
	for id := range step.Stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	pairs := make([]string, len(ids))
	for i, id := range ids {
		pairs[i] = id + "=" + step.Stats[id]
	}

	return Record{
		Session:   session,
		Simulator: simulator,
		Step:      index,
		Type:      string(typ),
		Message:   step.Message,
		Stats:     strings.Join(pairs, ";"),
	}
}

// Writer appends records, writing the header with the first one
type Writer struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool
	count         int
}

// NewWriter writes records to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// Create opens path for writing, creating parent directories
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	return &Writer{out: f, closer: f}, nil
}

// Write appends one record
func (w *Writer) Write(rec Record) error {
	if w == nil {
		return nil
	}

	records := []Record{rec}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.out); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		w.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, w.out); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	w.count++
	return nil
}

// Count returns the number of records written
func (w *Writer) Count() int {
	if w == nil {
		return 0
	}
	return w.count
}

// Close closes the underlying file, if the writer owns one
func (w *Writer) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Read parses a trace previously written by Writer
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return records, nil
}
