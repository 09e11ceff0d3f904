package simulation

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Control types understood by prompts and algorithms
const (
	ControlNumber = "number"
	ControlText   = "text"
	ControlSelect = "select"
)

// DefaultStatValue is shown by a stat surface with no configured initial value
const DefaultStatValue = "0"

// Content describes one simulator widget, loaded from simulator.yaml
type Content struct {
	Name           string          `yaml:"name"`
	Title          string          `yaml:"title"`
	Description    string          `yaml:"description"`
	Version        string          `yaml:"version"`
	Category       string          `yaml:"category"`
	Algorithm      AlgorithmRef    `yaml:"algorithm"`
	Controls       []Control       `yaml:"controls"`
	Stats          []Stat          `yaml:"stats"`
	Visualizations []Visualization `yaml:"visualizations"`

	// Visualizer is attached in code; descriptors on disk cannot carry one.
	Visualizer Visualizer `yaml:"-"`
}

// Control is an input whose value is read when the simulation runs
type Control struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Type    string   `yaml:"type"` // number, text, select
	Options []string `yaml:"options,omitempty"`
	Value   string   `yaml:"value,omitempty"`
}

// Stat is a labelled display slot updated by steps
type Stat struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Initial string `yaml:"initial,omitempty"`
}

// InitialValue returns the configured initial display value or "0"
func (s Stat) InitialValue() string {
	if s.Initial == "" {
		return DefaultStatValue
	}
	return s.Initial
}

// Visualization is a container repopulated by the visualizer
type Visualization struct {
	ID        string `yaml:"id"`
	Label     string `yaml:"label"`
	ClassName string `yaml:"className,omitempty"`
}

// UnmarshalYAML accepts the algorithm name as a plain scalar
func (r *AlgorithmRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: algorithm must be a name", value.Line)
	}
	*r = ByName(value.Value)
	return nil
}

// MarshalYAML writes named references back as a scalar
func (r AlgorithmRef) MarshalYAML() (interface{}, error) {
	if r.Fn != nil {
		return nil, errors.New("direct algorithm functions cannot be serialized")
	}
	return r.Name, nil
}

// Validate checks the descriptor for structural mistakes
func (c *Content) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Algorithm.Fn == nil && c.Algorithm.Name == "" {
		return errors.New("algorithm is required")
	}

	seen := make(map[string]string)
	check := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s id is required", kind)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate id %q (%s and %s)", id, prev, kind)
		}
		seen[id] = kind
		return nil
	}

	for _, ctl := range c.Controls {
		if err := check("control", ctl.ID); err != nil {
			return err
		}
		switch ctl.Type {
		case ControlNumber, ControlText, "":
		case ControlSelect:
			if len(ctl.Options) == 0 {
				return fmt.Errorf("select control %q has no options", ctl.ID)
			}
		default:
			return fmt.Errorf("control %q has unsupported type %q", ctl.ID, ctl.Type)
		}
	}
	for _, s := range c.Stats {
		if err := check("stat", s.ID); err != nil {
			return err
		}
	}
	for _, v := range c.Visualizations {
		if err := check("visualization", v.ID); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy that can be adjusted without touching the original
func (c *Content) Clone() *Content {
	out := *c
	out.Controls = append([]Control(nil), c.Controls...)
	out.Stats = append([]Stat(nil), c.Stats...)
	out.Visualizations = append([]Visualization(nil), c.Visualizations...)
	return &out
}
