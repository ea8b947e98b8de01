package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestDocumentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetDocument(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stamp := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	st := core.DefaultState(stamp)
	st.Income = 2100
	st.Expenses = append(st.Expenses, core.Expense{
		ID: "e1", Amount: 12.5, Category: core.CategoryFood, Date: stamp,
		Type: core.TypeEssential, PaymentMethod: core.PaymentCash,
	})
	if err := repo.PutDocument(ctx, core.UserDocument{FinanceState: st, UserID: "u1", UpdatedAt: stamp}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetDocument(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u1" || got.Income != 2100 || len(got.Expenses) != 1 || !got.UpdatedAt.Equal(stamp) {
		t.Fatalf("unexpected document: %+v", got)
	}

	st.Income = 2200
	if err := repo.PutDocument(ctx, core.UserDocument{FinanceState: st, UserID: "u1", UpdatedAt: stamp.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.GetDocument(ctx, "u1")
	if got.Income != 2200 {
		t.Fatalf("document not replaced: %v", got.Income)
	}
}

func TestPutDocumentRequiresUser(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.PutDocument(context.Background(), core.UserDocument{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	first, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	first.Close()
	second, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	second.Close()
}

func TestLocalSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	snap := NewLocalSnapshot(repo)
	ctx := context.Background()

	if _, err := snap.Load(ctx); !errors.Is(err, store.ErrNoSnapshot) {
		t.Fatalf("expected no snapshot, got %v", err)
	}

	st := core.DefaultState(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	st.IsOnboarded = true
	st.Income = 1800
	if err := snap.Save(ctx, st); err != nil {
		t.Fatal(err)
	}
	got, err := snap.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsOnboarded || got.Income != 1800 || got.Month() != core.NewMonth(2024, time.February) {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestLocalSnapshotCorruptFallsBackToDefault(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.SaveSnapshot(ctx, SnapshotKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	snap := NewLocalSnapshot(repo)
	if _, err := snap.Load(ctx); err == nil {
		t.Fatal("expected decode error")
	}

	s := store.Open(ctx, store.Options{Local: snap})
	if s.Snapshot().IsOnboarded {
		t.Fatal("corrupt snapshot should yield the default state")
	}
}
