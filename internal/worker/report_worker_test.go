package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
	storemem "fintrack/internal/storage/memory"
)

type failingDocs struct {
	storage.DocumentStore
	err error
}

func (f failingDocs) GetDocument(context.Context, string) (core.UserDocument, error) {
	return core.UserDocument{}, f.err
}

type failingReports struct{}

func (failingReports) UpsertReport(context.Context, sheets.MonthlyReport) (string, error) {
	return "", errors.New("quota exceeded")
}

func (failingReports) ListReports(context.Context, int) ([]sheets.MonthlyReport, error) {
	return nil, nil
}

func seededDocs(t *testing.T) *storemem.Store {
	t.Helper()
	updated := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)
	st := core.DefaultState(updated)
	st.IsOnboarded = true
	st.Income = 3000
	st.Expenses = append(st.Expenses,
		core.Expense{ID: "e1", Amount: 600, Category: core.CategoryHousing, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Type: core.TypeEssential, PaymentMethod: core.PaymentCash},
		core.Expense{ID: "e2", Amount: 120, Category: core.CategoryEntertainment, Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Type: core.TypePersonal, PaymentMethod: core.PaymentCash},
	)
	docs := storemem.New()
	if err := docs.PutDocument(context.Background(), core.UserDocument{FinanceState: st, UserID: "u1", UpdatedAt: updated}); err != nil {
		t.Fatal(err)
	}
	return docs
}

func TestHandleUserDataUpdatedWritesMonthReport(t *testing.T) {
	reports := sheetsmem.New()
	w := NewReportWorker(seededDocs(t), reports)
	ctx := context.Background()

	msg := amqp.NewUserDataUpdatedMessage("u1", time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC))
	if err := w.HandleUserDataUpdated(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// A repeated event for the same month replaces the row.
	if err := w.HandleUserDataUpdated(ctx, msg); err != nil {
		t.Fatalf("handle again: %v", err)
	}

	rows, _ := reports.ListReports(ctx, 2024)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	r := rows[0]
	if r.Month != core.NewMonth(2024, time.March) || r.UserID != "u1" {
		t.Fatalf("unexpected key: %+v", r)
	}
	if r.Income != 3000 || r.Spent != 600 || r.EssentialSpent != 600 {
		t.Errorf("unexpected totals: %+v", r)
	}
	// 600 of a 2400 essential+personal budget.
	if r.HealthPercent != 25 || r.Health != core.HealthExcellent {
		t.Errorf("unexpected health: %v %s", r.HealthPercent, r.Health)
	}
}

func TestHandleUserDataUpdatedMissingDocument(t *testing.T) {
	reports := sheetsmem.New()
	w := NewReportWorker(storemem.New(), reports)
	if err := w.HandleUserDataUpdated(context.Background(), amqp.NewUserDataUpdatedMessage("ghost", time.Now())); err != nil {
		t.Fatalf("missing document should be skipped, got %v", err)
	}
	rows, _ := reports.ListReports(context.Background(), time.Now().Year())
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestHandleUserDataUpdatedErrors(t *testing.T) {
	msg := amqp.NewUserDataUpdatedMessage("u1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	corrupt := NewReportWorker(failingDocs{err: fmt.Errorf("%w: u1", storage.ErrCorruptDocument)}, sheetsmem.New())
	if err := corrupt.HandleUserDataUpdated(context.Background(), msg); !errors.Is(err, amqp.ErrPermanent) {
		t.Errorf("corrupt document should be permanent, got %v", err)
	}

	down := NewReportWorker(failingDocs{err: errors.New("database is locked")}, sheetsmem.New())
	if err := down.HandleUserDataUpdated(context.Background(), msg); err == nil || errors.Is(err, amqp.ErrPermanent) {
		t.Errorf("store failure should be retryable, got %v", err)
	}

	sheetDown := NewReportWorker(seededDocs(t), failingReports{})
	if err := sheetDown.HandleUserDataUpdated(context.Background(), msg); err == nil || errors.Is(err, amqp.ErrPermanent) {
		t.Errorf("sheet failure should be retryable, got %v", err)
	}
}

func TestBackfill(t *testing.T) {
	reports := sheetsmem.New()
	w := NewReportWorker(seededDocs(t), reports)
	ctx := context.Background()

	n, err := w.Backfill(ctx, "u1", core.NewMonth(2024, time.March), 3)
	if err != nil || n != 3 {
		t.Fatalf("backfill: n=%d err=%v", n, err)
	}
	rows, _ := reports.ListReports(ctx, 2024)
	if len(rows) != 3 {
		t.Fatalf("expected three rows, got %d", len(rows))
	}
	if rows[0].Month != core.NewMonth(2024, time.January) || rows[1].PersonalSpent != 120 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	if _, err := w.Backfill(ctx, "ghost", core.NewMonth(2024, time.March), 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBackfillSkipsCurrentReports(t *testing.T) {
	docs := seededDocs(t)
	reports := sheetsmem.New()
	w := NewReportWorker(docs, reports)
	ctx := context.Background()

	// December 2023 through February 2024 span two yearly tabs.
	end := core.NewMonth(2024, time.February)
	if n, err := w.Backfill(ctx, "u1", end, 3); err != nil || n != 3 {
		t.Fatalf("first backfill: n=%d err=%v", n, err)
	}
	if n, err := w.Backfill(ctx, "u1", end, 3); err != nil || n != 0 {
		t.Fatalf("reports are current, expected no writes: n=%d err=%v", n, err)
	}

	doc, err := docs.GetDocument(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	doc.UpdatedAt = doc.UpdatedAt.Add(time.Hour)
	if err := docs.PutDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if n, err := w.Backfill(ctx, "u1", end, 3); err != nil || n != 3 {
		t.Fatalf("newer document should rewrite every month: n=%d err=%v", n, err)
	}
	rows, _ := reports.ListReports(ctx, 2023)
	if len(rows) != 1 || !rows[0].UpdatedAt.Equal(doc.UpdatedAt) {
		t.Fatalf("december row not refreshed: %+v", rows)
	}
}
