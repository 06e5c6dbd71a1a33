// Package ui provides terminal feedback for long-running operations.
package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Spinner provides a simple command-line spinner for long-running
// operations such as the FTP transfer. It writes to stderr so the
// stdout summary line stays machine-readable.
type Spinner struct {
	chars   []string
	message string
	active  bool
	mu      sync.Mutex
	done    chan struct{}
}

// NewSpinner creates a new spinner instance.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		done:    make(chan struct{}),
	}
}

// Start begins spinning. On non-terminal output, or when NO_COLOR is
// set, it prints the message once instead of animating.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	if !stderrIsTerminal() || os.Getenv("NO_COLOR") != "" {
		fmt.Fprintf(os.Stderr, "%s...\n", s.message)
		return
	}

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s %s", s.chars[i%len(s.chars)], s.message)
				i++
			}
		}
	}()
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false

	if stderrIsTerminal() && os.Getenv("NO_COLOR") == "" {
		close(s.done)
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}
}

func stderrIsTerminal() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
