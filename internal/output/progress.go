// Package output provides terminal output utilities: a percentage-driven
// progress bar for reset/backup runs, a spinner for indeterminate work, and
// table rendering for scan results, backups, and undo history.
//
// Progress indicators are thread-safe. On a non-TTY writer the animations
// are suppressed so captured output stays clean.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the writer exposes an Fd() method (e.g.
// *os.File) and that fd is a terminal. Plain io.Writer values such as
// *bytes.Buffer report false.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar renders a 0-100 percentage bar with a status message, driven
// by absolute percentages from engine progress events.
// Example: [=================>  ] 85% purging cache directories
type ProgressBar struct {
	mu         sync.Mutex
	percentage int
	message    string
	width      int
	writer     io.Writer
}

// NewProgress creates a progress bar writing to stdout.
func NewProgress() *ProgressBar {
	return &ProgressBar{width: 40, writer: os.Stdout}
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Update sets the current percentage and message and redraws. Percentages
// below the current value are ignored so the bar never moves backwards.
func (p *ProgressBar) Update(percentage int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if percentage > p.percentage {
		p.percentage = percentage
	}
	if percentage > 100 {
		p.percentage = 100
	}
	p.message = message
	p.render()
}

// Finish completes the bar and moves to a new line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.percentage = 100
	if writerIsTTY(p.writer) {
		p.render()
		fmt.Fprintln(p.writer)
	} else {
		p.render()
	}
}

// render draws the bar (must be called with lock held).
func (p *ProgressBar) render() {
	filled := (p.percentage * p.width) / 100

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	if writerIsTTY(p.writer) {
		// Overwrite the current line; pad so shorter messages erase longer ones.
		fmt.Fprintf(p.writer, "\r%s %3d%% %-50.50s", bar.String(), p.percentage, p.message)
	} else {
		fmt.Fprintf(p.writer, "%s %3d%% %s\n", bar.String(), p.percentage, p.message)
	}
}

// Spinner displays an animated spinner with a message for operations whose
// duration is unknown (scans, restores).
type Spinner struct {
	mu      sync.Mutex
	message string
	running bool
	chars   []string
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a spinner writing to stdout.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stdout,
		done:    make(chan struct{}),
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. On a non-TTY writer the message is printed
// once and no goroutine is started.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", s.chars[idx], s.message)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}
