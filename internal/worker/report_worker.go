package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ReportWorker keeps the reports sheet in line with stored user documents.
type ReportWorker struct {
	docs    storage.DocumentStore
	reports sheets.ReportStore
	now     func() time.Time
	logger  *slog.Logger
}

func NewReportWorker(docs storage.DocumentStore, reports sheets.ReportStore) *ReportWorker {
	return &ReportWorker{
		docs:    docs,
		reports: reports,
		now:     time.Now,
		logger:  slog.With(log.FieldComponent, log.ComponentWorker),
	}
}

// HandleUserDataUpdated rewrites the report row of the month the update was
// made in. The document is read from the store, so a late message still
// reports the latest data. Documents that no longer exist are skipped and
// corrupt ones are dropped without retry.
func (w *ReportWorker) HandleUserDataUpdated(ctx context.Context, msg *amqp.UserDataUpdatedMessage) error {
	w.logger.InfoContext(ctx, "Processing user data update",
		log.FieldUserID, msg.UserID,
		log.FieldUpdatedAt, msg.UpdatedAt)

	doc, err := w.docs.GetDocument(ctx, msg.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.logger.WarnContext(ctx, "Document not found, skipping report", log.FieldUserID, msg.UserID)
		return nil
	case errors.Is(err, storage.ErrCorruptDocument):
		return fmt.Errorf("%w: %v", amqp.ErrPermanent, err)
	case err != nil:
		return fmt.Errorf("get document: %w", err)
	}

	at := msg.UpdatedAt
	if at.IsZero() {
		at = w.now()
	}
	_, err = w.Report(ctx, doc, core.MonthOf(at))
	return err
}

// Report summarizes doc for month and writes the row.
func (w *ReportWorker) Report(ctx context.Context, doc core.UserDocument, month core.Month) (string, error) {
	summary := services.Summarize(doc.FinanceState, month)
	row := sheets.NewMonthlyReport(doc.UserID, summary, doc.UpdatedAt)

	ref, err := w.reports.UpsertReport(ctx, row)
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report written",
		log.FieldUserID, doc.UserID,
		log.FieldMonth, month.String(),
		log.FieldSheetsRef, ref,
		"health", summary.Health)
	return ref, nil
}

// Backfill brings the reports of the n months ending at end up to date. A
// month whose row already carries the document's update time is skipped. It
// returns the number of rows written and stops at the first failure.
func (w *ReportWorker) Backfill(ctx context.Context, userID string, end core.Month, n int) (int, error) {
	doc, err := w.docs.GetDocument(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}
	current := doc.UpdatedAt.Truncate(time.Second)
	reported := make(map[core.Month]time.Time)
	listed := make(map[int]bool)

	written := 0
	for i := n - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		month := end.AddMonths(-i)
		if !listed[month.Year] {
			rows, err := w.reports.ListReports(ctx, month.Year)
			if err != nil {
				return written, fmt.Errorf("list reports: %w", err)
			}
			for _, r := range rows {
				if r.UserID == userID {
					reported[r.Month] = r.UpdatedAt
				}
			}
			listed[month.Year] = true
		}
		if at, ok := reported[month]; ok && !at.Before(current) {
			continue
		}
		if _, err := w.Report(ctx, doc, month); err != nil {
			return written, err
		}
		written++
	}
	if written < n {
		w.logger.DebugContext(ctx, "Backfill skipped current reports",
			log.FieldUserID, userID,
			log.FieldCount, n-written)
	}
	return written, nil
}
