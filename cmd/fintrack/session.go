package main

import (
	"context"
	"fmt"

	"fintrack/internal/cli"
	"fintrack/internal/cloudsync"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/remote"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// session is the state one command invocation works on.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	repo   *storage.SQLiteRepository
	store  *store.Store
	saver  *cloudsync.Saver
}

func openSession(ctx context.Context, cfg *config.Config, logger *log.Logger, offline bool) (*session, error) {
	repo, err := storage.NewSQLiteRepository(cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	userID, err := cli.ResolveUserID(ctx, repo, cfg.UserID)
	if err != nil {
		repo.Close()
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, repo: repo}
	opts := store.Options{
		Local:         storage.NewLocalSnapshot(repo),
		UserID:        userID,
		CategoryTypes: cfg.Categories(),
	}
	if !offline {
		client := remote.NewClient(cfg.RemoteAPIURL, remote.StaticAuth{User: userID, Token: cfg.APIToken}, cfg.RemoteTimeout)
		s.saver = cloudsync.NewSaver(client, userID, cfg.RemoteTimeout)
		opts.Remote = s.saver
		opts.Sync = cloudsync.NewFacade(client)
	}
	s.store = store.Open(ctx, opts)
	return s, nil
}

func (s *session) selectMonth(ctx context.Context, raw string) error {
	m, err := core.ParseMonth(raw)
	if err != nil {
		return err
	}
	return s.store.SetSelectedMonth(ctx, m)
}

// Close waits for pending remote saves, then closes the database. A save
// that does not finish in time is reported but the local copy is kept.
func (s *session) Close(ctx context.Context) {
	if s.saver != nil {
		if err := s.store.Wait(ctx); err != nil {
			s.logger.WarnContext(ctx, "Remote save still pending at exit", log.FieldError, err.Error())
		}
		if st := s.saver.Status(); st.LastError != nil {
			fmt.Println(warningStyle.Render("Saved locally; remote save failed: " + st.LastError.Error()))
		}
	}
	if err := s.repo.Close(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to close local database", log.FieldError, err.Error())
	}
}

// requireOnboarded stops commands that need an income and budget rule.
func (s *session) requireOnboarded() error {
	if !s.store.Snapshot().IsOnboarded {
		return fmt.Errorf(`not set up yet: run "fintrack onboard --income <amount>" first`)
	}
	return nil
}
