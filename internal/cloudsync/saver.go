package cloudsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultSaveTimeout bounds a single remote save.
const DefaultSaveTimeout = 10 * time.Second

// Status describes the remote saves issued so far.
type Status struct {
	// Issued is the sequence number of the most recent save.
	Issued uint64
	// Applied is the highest sequence number whose result was accepted.
	Applied    uint64
	InFlight   int
	LastSynced time.Time
	LastError  error
}

// Saver pushes snapshots to the remote store without blocking the caller.
//
// Saves are allowed to run concurrently. Each gets a sequence number; when a
// save finishes after a later one already finished, its result is dropped,
// so the outcome of the newest completed save is the one that counts.
// Failures are logged and never returned.
type Saver struct {
	remote  RemoteStore
	userID  string
	timeout time.Duration
	now     func() time.Time

	mu     sync.Mutex
	status Status
	wg     sync.WaitGroup
}

func NewSaver(remote RemoteStore, userID string, timeout time.Duration) *Saver {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	return &Saver{
		remote:  remote,
		userID:  userID,
		timeout: timeout,
		now:     time.Now,
	}
}

// Save starts an asynchronous save of state and returns its sequence number.
// The save outlives ctx cancellation but keeps its values.
func (s *Saver) Save(ctx context.Context, state core.FinanceState) uint64 {
	snapshot := state.Clone()
	base := context.WithoutCancel(ctx)

	// A save visible in Status is already counted by Wait.
	s.mu.Lock()
	s.wg.Add(1)
	s.status.Issued++
	seq := s.status.Issued
	s.status.InFlight++
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.run(base, seq, snapshot)
	}()
	return seq
}

func (s *Saver) run(ctx context.Context, seq uint64, state core.FinanceState) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.remote.Save(ctx, s.userID, state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.InFlight--

	if seq < s.status.Applied {
		slog.DebugContext(ctx, "Discarding stale remote save result",
			log.FieldComponent, log.ComponentSync,
			log.FieldSequence, seq,
			"applied", s.status.Applied)
		return
	}
	s.status.Applied = seq
	if err != nil {
		s.status.LastError = err
		slog.ErrorContext(ctx, "Remote save failed",
			log.FieldComponent, log.ComponentSync,
			log.FieldUserID, s.userID,
			log.FieldSequence, seq,
			log.FieldError, err)
		return
	}
	s.status.LastError = nil
	s.status.LastSynced = s.now()
	slog.DebugContext(ctx, "Remote save completed",
		log.FieldComponent, log.ComponentSync,
		log.FieldUserID, s.userID,
		log.FieldSequence, seq)
}

// Syncing reports whether any save is still in flight.
func (s *Saver) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.InFlight > 0
}

func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait blocks until every issued save has finished or ctx is done.
func (s *Saver) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
