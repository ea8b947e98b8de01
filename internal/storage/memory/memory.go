// Package memory is an in-process DocumentStore for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]core.UserDocument
}

var _ storage.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{docs: make(map[string]core.UserDocument)}
}

// NewFromDir seeds the store with every <userId>.json document in base.
// Missing directories and unreadable files are skipped.
func NewFromDir(base string) *Store {
	s := New()
	entries, err := os.ReadDir(base)
	if err != nil {
		return s
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			continue
		}
		var doc core.UserDocument
		if json.Unmarshal(data, &doc) != nil {
			continue
		}
		doc.UserID = strings.TrimSuffix(name, ".json")
		doc.Normalize()
		s.docs[doc.UserID] = doc
	}
	return s
}

func (s *Store) GetDocument(_ context.Context, userID string) (core.UserDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[userID]
	if !ok {
		return core.UserDocument{}, storage.ErrNotFound
	}
	out := doc
	out.FinanceState = doc.FinanceState.Clone()
	return out, nil
}

func (s *Store) PutDocument(_ context.Context, doc core.UserDocument) error {
	if doc.UserID == "" {
		return errors.New("put document: empty user id")
	}
	doc.FinanceState = doc.FinanceState.Clone()
	doc.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.UserID] = doc
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
