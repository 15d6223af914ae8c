package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a single status line while a run is being set up,
// before the progress table takes over the terminal.
type Spinner struct {
	w     io.Writer
	every time.Duration

	mu      sync.Mutex
	label   string
	started time.Time
	stop    chan struct{}
	halted  bool
	wg      sync.WaitGroup
}

// StartSpinner draws label on w until Stop is called.
func StartSpinner(w io.Writer, label string) *Spinner {
	s := &Spinner{
		w:       w,
		every:   100 * time.Millisecond,
		label:   label,
		started: time.Now(),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Phase swaps the label and restarts the elapsed clock.
func (s *Spinner) Phase(label string) {
	s.mu.Lock()
	s.label = label
	s.started = time.Now()
	s.mu.Unlock()
}

// Stop halts the animation and erases the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.halted {
		s.mu.Unlock()
		return
	}
	s.halted = true
	s.mu.Unlock()
	close(s.stop)
	s.wg.Wait()
	fmt.Fprint(s.w, "\r\033[K")
}

func (s *Spinner) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			label, since := s.label, time.Since(s.started)
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r\033[K%s %s (%s)", spinnerFrames[n%len(spinnerFrames)], label, shortElapsed(since))
		}
	}
}

func shortElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
