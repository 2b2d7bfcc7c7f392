package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner provides a simple progress indicator with context cancellation support.
// It also implements pipeline.ProgressSink, showing the latest percent and label.
type Spinner struct {
	message string
	percent float64
	width   int // widest line drawn so far, for clearing
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string
	mu      sync.Mutex
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		percent: -1,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				text := s.text()
				if n := len(text) + 2; n > s.width {
					s.width = n
				}
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Progress updates the displayed percent and label.
func (s *Spinner) Progress(percent float64, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.percent = percent
	s.message = label
}

// text renders the current line. Callers hold mu.
func (s *Spinner) text() string {
	if s.percent < 0 {
		return s.message
	}
	return fmt.Sprintf("%3.0f%% %s", s.percent, s.message)
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	width := s.width
	if n := len(s.text()) + 4; n > width {
		width = n
	}
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context the spinner was created with is
// done. Stop alone does not count as cancellation.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
