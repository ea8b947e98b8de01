package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fintrack/internal/cloudsync"
	"fintrack/internal/core"
)

type memPersister struct {
	mu      sync.Mutex
	state   *core.FinanceState
	loadErr error
	saveErr error
	saves   int
}

func (m *memPersister) Load(context.Context) (core.FinanceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return core.FinanceState{}, m.loadErr
	}
	if m.state == nil {
		return core.FinanceState{}, ErrNoSnapshot
	}
	return m.state.Clone(), nil
}

func (m *memPersister) Save(_ context.Context, st core.FinanceState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	c := st.Clone()
	m.state = &c
	return nil
}

type recordingSaver struct {
	mu     sync.Mutex
	states []core.FinanceState
}

func (r *recordingSaver) Save(_ context.Context, st core.FinanceState) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st.Clone())
	return uint64(len(r.states))
}

func (r *recordingSaver) Syncing() bool              { return false }
func (r *recordingSaver) Wait(context.Context) error { return nil }

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

type stubSyncer struct {
	result  core.FinanceState
	outcome cloudsync.Outcome
	during  func()
}

func (s *stubSyncer) SyncData(_ context.Context, _ string, local core.FinanceState) (core.FinanceState, cloudsync.Outcome) {
	if s.during != nil {
		s.during()
	}
	if s.outcome != cloudsync.OutcomeRemote {
		return local, s.outcome
	}
	out := s.result.Clone()
	out.SelectedMonth = local.SelectedMonth
	return out, s.outcome
}

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *memPersister, *recordingSaver) {
	t.Helper()
	local := &memPersister{}
	remote := &recordingSaver{}
	s := Open(context.Background(), Options{
		Local:  local,
		Remote: remote,
		UserID: "u1",
		Now:    func() time.Time { return testNow },
		NewID:  sequentialIDs(),
	})
	if err := s.CompleteOnboarding(context.Background(), 3000, core.DefaultBudgetRule); err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	return s, local, remote
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenFallsBackToDefaultOnCorruptSnapshot(t *testing.T) {
	local := &memPersister{loadErr: errors.New("invalid character 'x'")}
	s := Open(context.Background(), Options{Local: local, Now: func() time.Time { return testNow }})
	st := s.Snapshot()
	if st.IsOnboarded || st.Income != 0 || st.BudgetRule != core.DefaultBudgetRule {
		t.Fatalf("expected default state, got %+v", st)
	}
	if got := st.Month(); got != core.NewMonth(2024, time.March) {
		t.Fatalf("selected month %s", got)
	}
}

func TestOpenLoadsSnapshot(t *testing.T) {
	saved := core.DefaultState(testNow)
	saved.Income = 1200
	saved.IsOnboarded = true
	saved.Expenses = nil
	local := &memPersister{state: &saved}

	st := Open(context.Background(), Options{Local: local}).Snapshot()
	if st.Income != 1200 || !st.IsOnboarded {
		t.Fatalf("snapshot not loaded: %+v", st)
	}
	if st.Expenses == nil {
		t.Fatal("collections should be normalized")
	}
}

func TestCompleteOnboardingValidatesRule(t *testing.T) {
	s := New(Options{})
	err := s.CompleteOnboarding(context.Background(), 3000, core.BudgetRule{Essentials: 50, Personal: 30, Investments: 30})
	if !errors.Is(err, core.ErrInvalidBudgetRule) {
		t.Fatalf("expected invalid budget rule, got %v", err)
	}
	if err := s.CompleteOnboarding(context.Background(), 0, core.DefaultBudgetRule); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if s.Snapshot().IsOnboarded {
		t.Fatal("failed onboarding must not change state")
	}
}

func TestMutationPersistsLocallyAndSavesRemotely(t *testing.T) {
	s, local, remote := newTestStore(t)
	before := remote.count()

	if err := s.UpdateIncome(context.Background(), 4000); err != nil {
		t.Fatal(err)
	}
	if local.state == nil || local.state.Income != 4000 {
		t.Fatal("local snapshot not written before returning")
	}
	if remote.count() != before+1 {
		t.Fatalf("expected one remote save, got %d", remote.count()-before)
	}
}

func TestRejectedMutationChangesNothing(t *testing.T) {
	s, local, remote := newTestStore(t)
	saves, remoteSaves := local.saves, remote.count()

	_, err := s.AddExpense(context.Background(), ExpenseInput{Amount: -5, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCash})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if len(s.Snapshot().Expenses) != 0 || local.saves != saves || remote.count() != remoteSaves {
		t.Fatal("rejected mutation had side effects")
	}
}

func TestLocalSaveFailureKeepsMutation(t *testing.T) {
	s, local, _ := newTestStore(t)
	local.saveErr = errors.New("disk full")
	if err := s.UpdateIncome(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Income != 10 {
		t.Fatal("in-memory state should still change")
	}
}

func TestSetSelectedMonthIsLocalOnly(t *testing.T) {
	s, local, remote := newTestStore(t)
	before := remote.count()
	if err := s.SetSelectedMonth(context.Background(), core.NewMonth(2023, time.December)); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Month(); got != core.NewMonth(2023, time.December) {
		t.Fatalf("selected month %s", got)
	}
	if local.state.Month() != core.NewMonth(2023, time.December) {
		t.Fatal("selected month not persisted locally")
	}
	if remote.count() != before {
		t.Fatal("selected month must not trigger a remote save")
	}
}

func TestResetReturnsToOnboarding(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.AddIncome(context.Background(), IncomeInput{Amount: 50, Date: testNow}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	st := s.Snapshot()
	if st.IsOnboarded || len(st.Incomes) != 0 || st.Income != 0 {
		t.Fatalf("reset left data: %+v", st)
	}
}

func TestSyncAdoptsRemote(t *testing.T) {
	remoteDoc := core.DefaultState(date(2023, 1, 1))
	remoteDoc.Income = 9999
	remoteDoc.IsOnboarded = true
	local := &memPersister{}
	s := New(Options{
		Local: local,
		Sync:  &stubSyncer{result: remoteDoc, outcome: cloudsync.OutcomeRemote},
		Now:   func() time.Time { return testNow },
	})

	if got := s.Sync(context.Background()); got != cloudsync.OutcomeRemote {
		t.Fatalf("outcome %s", got)
	}
	st := s.Snapshot()
	if st.Income != 9999 {
		t.Fatalf("remote not adopted: %+v", st)
	}
	if st.Month() != core.NewMonth(2024, time.March) {
		t.Fatalf("selected month should stay local, got %s", st.Month())
	}
	if local.state == nil || local.state.Income != 9999 {
		t.Fatal("adopted state not persisted locally")
	}
}

func TestSyncKeepsLocalChangesMadeDuringSync(t *testing.T) {
	remoteDoc := core.DefaultState(date(2023, 1, 1))
	remoteDoc.Income = 9999
	saver := &recordingSaver{}
	syncer := &stubSyncer{result: remoteDoc, outcome: cloudsync.OutcomeRemote}
	s := New(Options{Remote: saver, Sync: syncer, Now: func() time.Time { return testNow }})
	syncer.during = func() {
		if err := s.UpdateIncome(context.Background(), 1234); err != nil {
			t.Error(err)
		}
	}

	s.Sync(context.Background())
	if got := s.Snapshot().Income; got != 1234 {
		t.Fatalf("local change lost, income %v", got)
	}
	saver.mu.Lock()
	last := saver.states[len(saver.states)-1]
	saver.mu.Unlock()
	if last.Income != 1234 {
		t.Fatal("newer local state should be pushed to the remote")
	}
}

func TestSyncOfflineKeepsLocal(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.syncer = &stubSyncer{outcome: cloudsync.OutcomeOffline}
	if got := s.Sync(context.Background()); got != cloudsync.OutcomeOffline {
		t.Fatalf("outcome %s", got)
	}
	if s.Snapshot().Income != 3000 {
		t.Fatal("offline sync changed state")
	}
}

func TestSyncWithoutRemoteIsOffline(t *testing.T) {
	s := New(Options{})
	if got := s.Sync(context.Background()); got != cloudsync.OutcomeOffline {
		t.Fatalf("outcome %s", got)
	}
	if s.Syncing() {
		t.Fatal("local-only store never syncs")
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.AddIncome(context.Background(), IncomeInput{Amount: 50, Date: testNow}); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	snap.Incomes[0].Amount = 1
	if s.Snapshot().Incomes[0].Amount != 50 {
		t.Fatal("snapshot shares memory with the store")
	}
}
