package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/heatposter/pkg/observability"
)

// Spinner animates a status line that follows the pipeline stages. While it
// runs it is registered as the pipeline hooks and forwards every event to
// the hooks it replaced.
type Spinner struct {
	observability.PipelineHooks

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	restore sync.Once
	frames  []string

	mu      sync.Mutex
	message string
	width   int // widest message shown, for clearing
}

// newSpinnerWithContext creates a spinner that stops when ctx is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		width:   len(message),
	}
}

// Start hooks the spinner into the pipeline and begins the animation.
func (s *Spinner) Start() {
	s.PipelineHooks = observability.Pipeline()
	observability.SetPipelineHooks(s)

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
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the animation, clears the line and unhooks the spinner.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
	s.restore.Do(func() {
		if s.PipelineHooks != nil {
			observability.SetPipelineHooks(s.PipelineHooks)
		}
	})
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Message returns the current status line.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) setMessage(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = fmt.Sprintf(format, args...)
	s.width = max(s.width, len(s.message))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// OnLoadStart implements observability.PipelineHooks.
func (s *Spinner) OnLoadStart(ctx context.Context, source string) {
	s.setMessage("Loading %s...", source)
	s.PipelineHooks.OnLoadStart(ctx, source)
}

// OnComposeStart implements observability.PipelineHooks.
func (s *Spinner) OnComposeStart(ctx context.Context, layout string, years int) {
	s.setMessage("Composing %s poster for %s...", layoutName(layout), plural(years, "year"))
	s.PipelineHooks.OnComposeStart(ctx, layout, years)
}

// OnRenderStart implements observability.PipelineHooks.
func (s *Spinner) OnRenderStart(ctx context.Context, formats []string) {
	s.setMessage("Rendering %s...", strings.ToUpper(strings.Join(formats, ", ")))
	s.PipelineHooks.OnRenderStart(ctx, formats)
}
