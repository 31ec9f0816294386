// Package memory is an in-process note cache. Contents are lost on restart.
package memory

import (
    "context"
    "sort"
    "sync"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

type account struct {
    notes  map[uint64]dusk.Note
    height uint64
}

// Store keeps synced notes per view key.
type Store struct {
    mu       sync.RWMutex
    accounts map[dusk.ViewKey]*account
}

func New() *Store {
    return &Store{accounts: make(map[dusk.ViewKey]*account)}
}

// Notes returns every note for vk ordered by position.
func (s *Store) Notes(_ context.Context, vk dusk.ViewKey) ([]dusk.Note, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    a, ok := s.accounts[vk]
    if !ok {
        return []dusk.Note{}, nil
    }
    out := make([]dusk.Note, 0, len(a.notes))
    for _, n := range a.notes {
        out = append(out, n)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
    return out, nil
}

// PutNotes upserts notes by position. The recorded height never moves backwards.
func (s *Store) PutNotes(_ context.Context, vk dusk.ViewKey, height uint64, notes []dusk.Note) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    a, ok := s.accounts[vk]
    if !ok {
        a = &account{notes: make(map[uint64]dusk.Note)}
        s.accounts[vk] = a
    }
    for _, n := range notes {
        a.notes[n.Position] = n
    }
    if height > a.height {
        a.height = height
    }
    return nil
}

func (s *Store) LastHeight(_ context.Context, vk dusk.ViewKey) (uint64, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    if a, ok := s.accounts[vk]; ok {
        return a.height, nil
    }
    return 0, nil
}

// Ready always succeeds.
func (s *Store) Ready(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}
