// Package cloudsync reconciles the local finance snapshot with the copy kept
// by the remote API, and performs the fire-and-forget remote saves that
// follow every local mutation.
package cloudsync

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ErrNotFound is returned by a RemoteStore when the user has no document yet.
var ErrNotFound = errors.New("remote document not found")

// RemoteStore is the per-user document store behind the remote API.
type RemoteStore interface {
	Fetch(ctx context.Context, userID string) (core.FinanceState, error)
	Save(ctx context.Context, userID string, state core.FinanceState) error
}

// Outcome tells which side won a sync.
type Outcome string

const (
	// OutcomeSeeded means the remote had no document and was seeded from local.
	OutcomeSeeded Outcome = "seeded"
	// OutcomeRemote means the remote document replaced local data.
	OutcomeRemote Outcome = "remote"
	// OutcomeOffline means the remote could not be reached and local was kept.
	OutcomeOffline Outcome = "offline"
)

type Facade struct {
	remote RemoteStore
}

func NewFacade(remote RemoteStore) *Facade {
	return &Facade{remote: remote}
}

// SyncData merges local with the remote document of userID.
//
// Without a remote document, local is written remotely once and returned
// as is. Otherwise the remote document wins for every field except
// SelectedMonth, which always comes from local. A failed fetch returns local
// unchanged; nothing is retried.
func (f *Facade) SyncData(ctx context.Context, userID string, local core.FinanceState) (core.FinanceState, Outcome) {
	remote, err := f.remote.Fetch(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := f.remote.Save(ctx, userID, local); err != nil {
			slog.ErrorContext(ctx, "Failed to seed remote document",
				log.FieldComponent, log.ComponentSync,
				log.FieldUserID, userID,
				log.FieldError, err)
			return local, OutcomeOffline
		}
		slog.InfoContext(ctx, "Seeded remote document from local state",
			log.FieldComponent, log.ComponentSync,
			log.FieldUserID, userID)
		return local, OutcomeSeeded
	case err != nil:
		slog.WarnContext(ctx, "Remote fetch failed, keeping local state",
			log.FieldComponent, log.ComponentSync,
			log.FieldUserID, userID,
			log.FieldError, err)
		return local, OutcomeOffline
	}

	remote.SelectedMonth = local.SelectedMonth
	remote.Normalize()
	slog.InfoContext(ctx, "Adopted remote document",
		log.FieldComponent, log.ComponentSync,
		log.FieldUserID, userID,
		"expenses", len(remote.Expenses))
	return remote, OutcomeRemote
}
