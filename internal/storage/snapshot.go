package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// SnapshotKey is the key the local snapshot is stored under.
const SnapshotKey = "fintrack-data"

type snapshotBackend interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
	SaveSnapshot(ctx context.Context, key string, data []byte) error
}

// LocalSnapshot keeps a device's FinanceState as one JSON blob.
type LocalSnapshot struct {
	backend snapshotBackend
	key     string
}

var _ store.LocalPersister = (*LocalSnapshot)(nil)

func NewLocalSnapshot(repo *SQLiteRepository) *LocalSnapshot {
	return &LocalSnapshot{backend: repo, key: SnapshotKey}
}

// Load returns store.ErrNoSnapshot when nothing was saved yet and a decode
// error when the blob is not a valid state.
func (l *LocalSnapshot) Load(ctx context.Context) (core.FinanceState, error) {
	data, err := l.backend.LoadSnapshot(ctx, l.key)
	if errors.Is(err, ErrNotFound) {
		return core.FinanceState{}, store.ErrNoSnapshot
	}
	if err != nil {
		return core.FinanceState{}, err
	}
	var st core.FinanceState
	if err := json.Unmarshal(data, &st); err != nil {
		return core.FinanceState{}, fmt.Errorf("decode local snapshot: %w", err)
	}
	return st, nil
}

func (l *LocalSnapshot) Save(ctx context.Context, st core.FinanceState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode local snapshot: %w", err)
	}
	return l.backend.SaveSnapshot(ctx, l.key, data)
}
