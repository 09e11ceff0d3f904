package logger

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar draws a single-line bar that is redrawn in place
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	total   int
	current int
}

// NewProgressBar creates a progress bar of total units
func NewProgressBar(w io.Writer, total int, message string) *ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	}
	if colorEnabled() {
		opts = append(opts, progressbar.OptionEnableColorCodes(true))
	}
	return &ProgressBar{bar: progressbar.NewOptions(total, opts...), total: total}
}

// Increment advances the bar by one unit
func (p *ProgressBar) Increment() {
	if p.current >= p.total {
		return
	}
	p.current++
	_ = p.bar.Add(1)
}

// Current returns the number of completed units
func (p *ProgressBar) Current() int {
	return p.current
}

// Finish fills the bar and ends the line
func (p *ProgressBar) Finish() {
	p.current = p.total
	_ = p.bar.Finish()
}
