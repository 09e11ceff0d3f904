// Package terminal renders a simulator widget as text: control values, stat
// and visualization panels, and a streaming log.
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

var (
	logColors = map[simulation.LogType]*color.Color{
		simulation.LogInfo:    color.New(color.FgCyan),
		simulation.LogSuccess: color.New(color.FgGreen),
		simulation.LogWarning: color.New(color.FgYellow),
		simulation.LogError:   color.New(color.FgRed, color.Bold),
	}
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgHiBlack)
)

type slot struct {
	id    string
	label string
	value string
}

// Surface is an in-memory widget that implements the controller's control,
// display and log surfaces and can print itself.
type Surface struct {
	mu sync.Mutex

	w       io.Writer
	noColor bool
	echo    bool
	title   string

	controls    map[string]string
	stats       []slot
	panels      []slot
	entries     []simulation.LogEntry
	stepEnabled bool
}

// Option configures a Surface
type Option func(*Surface)

// WithNoColor disables ANSI colors
func WithNoColor(noColor bool) Option {
	return func(s *Surface) { s.noColor = noColor }
}

// WithEcho prints log entries to the writer as they are appended
func WithEcho(echo bool) Option {
	return func(s *Surface) { s.echo = echo }
}

// New lays out a surface for content. Controls start at their configured
// values and stats at their initial values.
func New(w io.Writer, content *simulation.Content, opts ...Option) *Surface {
	s := &Surface{
		w:        w,
		title:    content.Title,
		controls: make(map[string]string, len(content.Controls)),
	}
	if s.title == "" {
		s.title = content.Name
	}
	for _, ctl := range content.Controls {
		s.controls[ctl.ID] = ctl.Value
	}
	for _, st := range content.Stats {
		s.stats = append(s.stats, slot{id: st.ID, label: st.Label, value: st.InitialValue()})
	}
	for _, v := range content.Visualizations {
		s.panels = append(s.panels, slot{id: v.ID, label: v.Label})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func find(slots []slot, id string) *slot {
	for i := range slots {
		if slots[i].id == id {
			return &slots[i]
		}
	}
	return nil
}

// SetControl changes the value an input holds. Unknown ids are ignored.
func (s *Surface) SetControl(id, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.controls[id]; !ok {
		return false
	}
	s.controls[id] = value
	return true
}

// ControlValue implements simulation.ControlSource
func (s *Surface) ControlValue(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.controls[id]
	return v, ok
}

// ClearVisualization implements simulation.Display
func (s *Surface) ClearVisualization(id string) {
	s.SetVisualization(id, "")
}

// SetVisualization replaces a panel's content
func (s *Surface) SetVisualization(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := find(s.panels, id); p != nil {
		p.value = content
	}
}

// Visualization returns a panel's content
func (s *Surface) Visualization(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := find(s.panels, id); p != nil {
		return p.value, true
	}
	return "", false
}

// SetStat implements simulation.Display
func (s *Surface) SetStat(id, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := find(s.stats, id); st != nil {
		st.value = value
	}
}

// Stat returns a stat's displayed value
func (s *Surface) Stat(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := find(s.stats, id); st != nil {
		return st.value, true
	}
	return "", false
}

// SetStepEnabled implements simulation.Display
func (s *Surface) SetStepEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stepEnabled = enabled
}

// StepEnabled reports whether stepping forward is currently offered
func (s *Surface) StepEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stepEnabled
}

// Clear implements simulation.LogSink
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
}

// Append implements simulation.LogSink
func (s *Surface) Append(entry simulation.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if s.echo {
		_, _ = fmt.Fprintln(s.w, s.formatEntry(entry))
	}
}

// Entries returns a copy of the log
func (s *Surface) Entries() []simulation.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]simulation.LogEntry(nil), s.entries...)
}

func (s *Surface) paint(c *color.Color, text string) string {
	if s.noColor || c == nil {
		return text
	}
	return c.Sprint(text)
}

// formatEntry renders "[15:04:05] SUCCESS message"
func (s *Surface) formatEntry(e simulation.LogEntry) string {
	tag := fmt.Sprintf("%-7s", strings.ToUpper(string(e.Type)))
	return fmt.Sprintf("%s %s %s",
		s.paint(labelColor, "["+e.Timestamp()+"]"),
		s.paint(logColors[e.Type], tag),
		e.Message)
}

// Render prints the stats line followed by every visualization panel
func (s *Surface) Render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString(s.paint(headerColor, s.title))
	b.WriteByte('\n')

	if len(s.stats) > 0 {
		parts := make([]string, len(s.stats))
		for i, st := range s.stats {
			parts[i] = s.paint(labelColor, st.label+":") + " " + st.value
		}
		b.WriteString(strings.Join(parts, "   "))
		b.WriteByte('\n')
	}

	for _, p := range s.panels {
		b.WriteString(s.paint(labelColor, "── "+p.label+" ──"))
		b.WriteByte('\n')
		if p.value == "" {
			b.WriteString("  (empty)\n")
			continue
		}
		for _, line := range strings.Split(p.value, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	_, _ = io.WriteString(s.w, b.String())
}

// RenderLog prints every log entry
func (s *Surface) RenderLog() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		_, _ = fmt.Fprintln(s.w, s.formatEntry(e))
	}
}

// Visualizer returns a visualizer that writes step payloads into s.
// Panels payloads fill the matching panels; anything else is printed into
// the first panel.
func Visualizer(s *Surface) simulation.Visualizer {
	return func(step simulation.Step, _ *simulation.SimulatorState) {
		switch p := step.Payload.(type) {
		case nil:
		case simulation.Panels:
			ids := make([]string, 0, len(p))
			for id := range p {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				s.SetVisualization(id, p[id])
			}
		case map[string]string:
			for id, v := range p {
				s.SetVisualization(id, v)
			}
		default:
			s.mu.Lock()
			first := ""
			if len(s.panels) > 0 {
				first = s.panels[0].id
			}
			s.mu.Unlock()
			if first != "" {
				s.SetVisualization(first, fmt.Sprint(p))
			}
		}
	}
}
