package overdue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
)

// DefaultInterval is the scan period used when none is configured.
const DefaultInterval = 10 * time.Minute

// ErrScannerRunning is returned by Start on a scanner that is already running.
var ErrScannerRunning = errors.New("overdue scanner already running")

// Finder produces the overdue report. *Detector implements it.
type Finder interface {
	Detect(ctx context.Context) ([]models.OverdueVisit, error)
}

// Scanner runs the detector periodically and reports each outcome to the listener.
// Scans never overlap, and a failed scan leaves the ticker running.
type Scanner struct {
	finder   Finder
	listener ports.Listener
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	scanMu sync.Mutex
}

type ScannerOption func(*Scanner)

func WithInterval(interval time.Duration) ScannerOption {
	return func(s *Scanner) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func NewScanner(finder Finder, listener ports.Listener, opts ...ScannerOption) (*Scanner, error) {
	if finder == nil {
		return nil, errors.New("overdue finder is required")
	}
	if listener == nil {
		return nil, errors.New("listener is required")
	}
	s := &Scanner{
		finder:   finder,
		listener: listener,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start scans once right away and then every interval until Stop is called or ctx ends.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrScannerRunning
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, s.stop, s.done)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "overdue scanner started", "interval", s.interval.String())
	}
	return nil
}

// Stop prevents further scans and waits for an in-flight scan to finish. Calling Stop on a
// scanner that is not running is a no-op.
func (s *Scanner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// RunNow performs one scan immediately, notifying the listener like a scheduled scan.
func (s *Scanner) RunNow(ctx context.Context) ([]models.OverdueVisit, error) {
	return s.runOnce(ctx)
}

func (s *Scanner) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer s.clearRun(stop)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_, _ = s.runOnce(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			_, _ = s.runOnce(ctx)
		}
	}
}

// clearRun forgets the run that owns stop, so a scanner whose ctx ended can be started
// again. A run already taken over by Stop is left alone.
func (s *Scanner) clearRun(stop <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == stop {
		s.stop, s.done = nil, nil
	}
}

func (s *Scanner) runOnce(ctx context.Context) ([]models.OverdueVisit, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	visits, err := s.finder.Detect(ctx)
	switch {
	case err != nil:
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "overdue scan failed", "error", err)
		}
		s.listener.ScanFailed(ctx, err)
	case len(visits) == 0:
		s.listener.NoOverdueFound(ctx)
	default:
		s.listener.OverdueListReady(ctx, visits)
	}
	return visits, err
}
