// Package store owns the canonical FinanceState of one user and exposes the
// mutations the user interface performs on it.
//
// Every successful mutation is written to the local persister before it
// returns, then handed to the remote saver, which works in the background.
// Reads return copies; derived values are computed on each call.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/cloudsync"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNoSnapshot is returned by a LocalPersister that has nothing stored yet.
	ErrNoSnapshot = errors.New("no local snapshot")
)

// LocalPersister stores the snapshot on the local device.
type LocalPersister interface {
	Load(ctx context.Context) (core.FinanceState, error)
	Save(ctx context.Context, state core.FinanceState) error
}

// RemoteSaver mirrors snapshots to the remote store asynchronously.
type RemoteSaver interface {
	Save(ctx context.Context, state core.FinanceState) uint64
	Syncing() bool
	Wait(ctx context.Context) error
}

// Syncer reconciles local state with the remote document.
type Syncer interface {
	SyncData(ctx context.Context, userID string, local core.FinanceState) (core.FinanceState, cloudsync.Outcome)
}

type Options struct {
	Local LocalPersister
	// Remote and Sync are optional; without them the store is local only.
	Remote RemoteSaver
	Sync   Syncer
	UserID string
	// CategoryTypes defaults to core.DefaultCategoryTypes.
	CategoryTypes core.CategoryTypes
	Now           func() time.Time
	NewID         func() string
}

type Store struct {
	mu    sync.Mutex
	state core.FinanceState
	rev   uint64

	local  LocalPersister
	remote RemoteSaver
	syncer Syncer
	userID string
	types  core.CategoryTypes
	now    func() time.Time
	newID  func() string
}

// New returns a store holding the default state. Use Open to load the local
// snapshot.
func New(opts Options) *Store {
	s := &Store{
		local:  opts.Local,
		remote: opts.Remote,
		syncer: opts.Sync,
		userID: opts.UserID,
		types:  opts.CategoryTypes,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.types == nil {
		s.types = core.DefaultCategoryTypes()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = core.NewID
	}
	s.state = core.DefaultState(s.now())
	return s
}

// Open creates a store and loads the local snapshot into it.
func Open(ctx context.Context, opts Options) *Store {
	s := New(opts)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory state with the local snapshot. A missing or
// unreadable snapshot yields the default state, which sends the user back
// through onboarding.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local == nil {
		return
	}
	st, err := s.local.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		slog.InfoContext(ctx, "No local snapshot, starting fresh",
			log.FieldComponent, log.ComponentStore)
		s.state = core.DefaultState(s.now())
	case err != nil:
		slog.WarnContext(ctx, "Local snapshot unreadable, resetting to default state",
			log.FieldComponent, log.ComponentStore,
			log.FieldError, err)
		s.state = core.DefaultState(s.now())
	default:
		st.Normalize()
		if st.SelectedMonth.IsZero() {
			st.SelectedMonth = core.MonthOf(s.now()).FirstDay()
		}
		s.state = st
	}
	s.rev++
}

// mutate applies fn to a copy of the state. If fn fails nothing changes;
// otherwise the copy becomes the state, is saved locally and, when remote
// is true, queued for a remote save.
func (s *Store) mutate(ctx context.Context, op string, remote bool, fn func(st *core.FinanceState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		slog.DebugContext(ctx, "Mutation rejected",
			log.FieldComponent, log.ComponentStore,
			log.FieldOperation, op,
			log.FieldError, err)
		return err
	}
	s.state = next
	s.rev++
	s.persistLocked(ctx, op)
	if remote && s.remote != nil {
		s.remote.Save(ctx, s.state)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context, op string) {
	if s.local == nil {
		return
	}
	if err := s.local.Save(ctx, s.state); err != nil {
		slog.ErrorContext(ctx, "Failed to persist local snapshot",
			log.FieldComponent, log.ComponentStore,
			log.FieldOperation, op,
			log.FieldError, err)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() core.FinanceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) UserID() string { return s.userID }

// CategoryTypes returns the category mapping in use.
func (s *Store) CategoryTypes() core.CategoryTypes { return s.types }

// Summary derives the aggregates for month.
func (s *Store) Summary(month core.Month) services.MonthSummary {
	return services.Summarize(s.Snapshot(), month)
}

// SelectedSummary derives the aggregates for the selected month.
func (s *Store) SelectedSummary() services.MonthSummary {
	st := s.Snapshot()
	return services.Summarize(st, st.Month())
}

func (s *Store) CardUsage(cardID string, month core.Month) (services.CardUsage, error) {
	return services.CreditCardUsage(s.Snapshot(), cardID, month)
}

// SetSelectedMonth changes the month the UI is looking at. It is stored
// locally only; the remote copy never carries navigation state forward.
func (s *Store) SetSelectedMonth(ctx context.Context, m core.Month) error {
	return s.mutate(ctx, "set_selected_month", false, func(st *core.FinanceState) error {
		st.SelectedMonth = m.FirstDay()
		return nil
	})
}

// CompleteOnboarding sets the base income and budget rule. The rule must
// add up to 100.
func (s *Store) CompleteOnboarding(ctx context.Context, income float64, rule core.BudgetRule) error {
	if income <= 0 {
		return core.ErrInvalidAmount
	}
	if err := rule.ValidateTotal(); err != nil {
		return err
	}
	return s.mutate(ctx, "complete_onboarding", true, func(st *core.FinanceState) error {
		st.Income = income
		st.BudgetRule = rule
		st.IsOnboarded = true
		return nil
	})
}

func (s *Store) UpdateIncome(ctx context.Context, income float64) error {
	if income < 0 {
		return core.ErrInvalidAmount
	}
	return s.mutate(ctx, "update_income", true, func(st *core.FinanceState) error {
		st.Income = income
		return nil
	})
}

// UpdateBudgetRule accepts rules that do not add up to 100.
func (s *Store) UpdateBudgetRule(ctx context.Context, rule core.BudgetRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "update_budget_rule", true, func(st *core.FinanceState) error {
		st.BudgetRule = rule
		return nil
	})
}

// Reset discards all data and returns to the onboarding state.
func (s *Store) Reset(ctx context.Context) error {
	return s.mutate(ctx, "reset", true, func(st *core.FinanceState) error {
		*st = core.DefaultState(s.now())
		return nil
	})
}

// Sync reconciles with the remote document and adopts the result. If the
// state changed while the remote was being consulted, the newer local state
// is kept and pushed instead.
func (s *Store) Sync(ctx context.Context) cloudsync.Outcome {
	if s.syncer == nil {
		return cloudsync.OutcomeOffline
	}
	s.mu.Lock()
	local := s.state.Clone()
	rev := s.rev
	s.mu.Unlock()

	merged, outcome := s.syncer.SyncData(ctx, s.userID, local)
	if outcome != cloudsync.OutcomeRemote {
		return outcome
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rev != rev {
		slog.WarnContext(ctx, "State changed during sync, keeping local changes",
			log.FieldComponent, log.ComponentStore,
			log.FieldUserID, s.userID)
		if s.remote != nil {
			s.remote.Save(ctx, s.state)
		}
		return outcome
	}
	s.state = merged
	s.rev++
	s.persistLocked(ctx, "sync")
	return outcome
}

// Syncing reports whether a remote save is in flight.
func (s *Store) Syncing() bool {
	return s.remote != nil && s.remote.Syncing()
}

// Wait blocks until pending remote saves finish or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Wait(ctx)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}
