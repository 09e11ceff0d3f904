// Package catalog finds simulator descriptors on disk and merges them with
// the built-in ones.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/algorithm-simulations/pkg/algorithms"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

// DescriptorFile is the name of a simulator descriptor, or its suffix
// ("sorting.simulator.yaml")
const DescriptorFile = "simulator.yaml"

// Entry is one simulator known to the catalog
type Entry struct {
	// Path is the descriptor file, empty for built-ins
	Path    string
	Content *simulation.Content
}

// Builtin reports whether the entry ships with the binary
func (e Entry) Builtin() bool { return e.Path == "" }

// Source describes where the entry came from
func (e Entry) Source() string {
	if e.Builtin() {
		return "built-in"
	}
	return e.Path
}

// DescriptorPattern matches descriptor files anywhere below the catalog dir
const DescriptorPattern = "**/{" + DescriptorFile + ",*." + DescriptorFile + "}"

// Discover finds descriptor files below dir. Unreadable or invalid
// descriptors are logged and skipped. A missing dir yields no entries.
func Discover(dir string) ([]Entry, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), DescriptorPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan for simulators: %w", err)
	}
	sort.Strings(matches)

	var entries []Entry
	for _, match := range matches {
		path := filepath.Join(dir, filepath.FromSlash(match))
		content, err := Load(path)
		if err != nil {
			logger.Warnf("Skipping %s: %v", path, err)
			continue
		}
		entries = append(entries, Entry{Path: path, Content: content})
	}

	return entries, nil
}

// Load reads and validates a single descriptor
func Load(path string) (*simulation.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulator descriptor: %w", err)
	}

	var content simulation.Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse simulator descriptor: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator descriptor: %w", err)
	}

	return &content, nil
}

// All returns the built-in simulators overlaid with those discovered in dir.
// A descriptor on disk replaces a built-in with the same name.
func All(dir string) ([]Entry, error) {
	byName := make(map[string]Entry)
	for _, c := range algorithms.Catalog() {
		byName[c.Name] = Entry{Content: c}
	}

	found, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range found {
		if prev, ok := byName[e.Content.Name]; ok && !prev.Builtin() {
			logger.Warnf("Simulator %s defined in both %s and %s, using the latter", e.Content.Name, prev.Path, e.Path)
		}
		byName[e.Content.Name] = e
	}

	out := make([]Entry, 0, len(byName))
	for _, e := range byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Content.Name < out[j].Content.Name })
	return out, nil
}

// Find returns the entry with the given name
func Find(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Content.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names lists entry names in order
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Content.Name
	}
	return names
}
