package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line on w while a step runs. It stops on
// Stop or when its context is cancelled.
type Spinner struct {
	w       io.Writer
	message string
	start   time.Time

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu       sync.Mutex
	width    int
	stopOnce sync.Once
}

// newSpinner creates a spinner writing to the status output.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, statusOut, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	line := fmt.Sprintf("%s %s %s", frame, s.message, s.Elapsed().Truncate(100*time.Millisecond))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = len(line)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame),
		StyleDim.Render(strings.TrimPrefix(line, frame+" ")))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// Elapsed returns the time since Start.
func (s *Spinner) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start)
}

// Stop ends the animation and clears the line. Safe to call repeatedly.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if !s.start.IsZero() {
			<-s.stopped
		}
		s.clearLine()
	})
}

// StopWithSuccess stops the spinner and prints message with the elapsed time.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s %s", message, StyleDim.Render("("+s.Elapsed().Round(time.Millisecond).String()+")"))
}

// StopWithError stops the spinner and prints message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context passed to the constructor ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
