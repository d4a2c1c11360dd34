package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles styled terminal output. Status symbols go to stderr so
// stdout stays pipeable.
type Output struct {
	stdout  io.Writer
	stderr  io.Writer
	noColor bool
}

// NewOutput creates an Output bound to the process streams.
func NewOutput() *Output {
	return &Output{stdout: os.Stdout, stderr: os.Stderr}
}

// SetNoColor disables colored output.
func (o *Output) SetNoColor(v bool) {
	o.noColor = v
}

// SetWriters redirects output, used in tests.
func (o *Output) SetWriters(stdout, stderr io.Writer) {
	o.stdout = stdout
	o.stderr = stderr
}

// Success prints a success message with a green checkmark.
func (o *Output) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.stdout, "OK %s\n", msg)
	} else {
		fmt.Fprintf(o.stdout, "\033[32m✓\033[0m %s\n", msg)
	}
}

// Error prints an error message with a red X.
func (o *Output) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.stderr, "FAIL %s\n", msg)
	} else {
		fmt.Fprintf(o.stderr, "\033[31m✗\033[0m %s\n", msg)
	}
}

// Warning prints a warning message with a yellow exclamation.
func (o *Output) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.stderr, "WARN %s\n", msg)
	} else {
		fmt.Fprintf(o.stderr, "\033[33m!\033[0m %s\n", msg)
	}
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	fmt.Fprintf(o.stdout, format+"\n", args...)
}

// Println prints a line to stdout.
func (o *Output) Println(format string, args ...any) {
	fmt.Fprintf(o.stdout, format+"\n", args...)
}

// List prints an indented bullet list, used for checklists and plans.
func (o *Output) List(items []string) {
	for _, item := range items {
		fmt.Fprintf(o.stdout, "  - %s\n", item)
	}
}

// Table prints a simple aligned table.
func (o *Output) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(o.stdout, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(o.stdout)

	for i, w := range widths {
		fmt.Fprintf(o.stdout, "%s", strings.Repeat("-", w))
		if i < len(widths)-1 {
			fmt.Fprint(o.stdout, "  ")
		}
	}
	fmt.Fprintln(o.stdout)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(o.stdout, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(o.stdout)
	}
}
