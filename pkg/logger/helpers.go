package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

const (
	IconSuccess = "✅"
	IconRefresh = "🔄"
	IconDot     = "•"
)

var sectionColor = color.New(color.FgCyan, color.Bold)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

func colorEnabled() bool {
	l, ok := defaultLogger.(*logger)
	if !ok {
		return false
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return !l.out.noColor
}

// LogSection prints a visual section separator to stdout
func LogSection(title string) {
	FprintSection(os.Stdout, title)
}

// FprintSection writes a section header framed by rules
func FprintSection(w io.Writer, title string) {
	line := strings.Repeat("=", 50)
	if colorEnabled() {
		title = sectionColor.Sprint(title)
	}
	_, _ = fmt.Fprintf(w, "%s\n%s\n%s\n", line, title, line)
}

// LogKeyValue prints a key-value pair
func LogKeyValue(key string, value interface{}) {
	if colorEnabled() {
		key = color.CyanString(key)
	}
	fmt.Printf("%s: %v\n", key, value)
}

// LogList prints a titled bullet list
func LogList(title string, items []string) {
	Info(title)
	FprintList(os.Stdout, items)
}

// FprintList writes one bullet per item
func FprintList(w io.Writer, items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}
