package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	applog "campusmart/internal/log"
)

// ErrSkip returned from an Update callback ends the update without writing.
var ErrSkip = errors.New("store: nothing to write")

const maxAttempts = 5

// JSON is a typed document. All JSON values for the same backend document
// share one process-wide lock.
type JSON[T any] struct {
	b     Backend
	name  string
	empty func() T
	mu    *sync.Mutex
}

// NewJSON binds a document name to a backend. empty builds the value used
// when the document is missing or unreadable.
func NewJSON[T any](b Backend, name string, empty func() T) *JSON[T] {
	return &JSON[T]{b: b, name: name, empty: empty, mu: lockFor("update:" + b.Locate(name))}
}

func (s *JSON[T]) Name() string { return s.name }

// Load returns the last persisted value. Missing, corrupt or unreadable
// documents yield the empty value.
func (s *JSON[T]) Load() T {
	v, _, _, err := s.load()
	if err != nil {
		return s.empty()
	}
	return v
}

// exists reports whether the document is present, even if unparseable.
func (s *JSON[T]) load() (v T, version int64, exists bool, err error) {
	snap, err := s.b.Read(s.name)
	if err != nil {
		applog.Error(nil, "store.load.fail", err, map[string]any{"name": s.name})
		return s.empty(), 0, false, err
	}
	if snap.Data == nil {
		return s.empty(), snap.Version, false, nil
	}
	v = s.empty()
	if err := json.Unmarshal(snap.Data, &v); err != nil {
		applog.Warn(nil, "store.load.corrupt", err, map[string]any{"name": s.name})
		return s.empty(), snap.Version, true, nil
	}
	return v, snap.Version, true, nil
}

// Update runs load -> fn -> save as one critical section. If fn returns an
// error nothing is written; ErrSkip is swallowed. fn may run more than once
// when a backend reports a conflicting writer, so it must only touch v.
func (s *JSON[T]) Update(fn func(v *T) error) error {
	return s.update(func(v *T, _ bool) error { return fn(v) })
}

func (s *JSON[T]) update(fn func(v *T, exists bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, version, exists, err := s.load()
		if err != nil {
			return fmt.Errorf("load %s: %w", s.name, err)
		}
		if err := fn(&v, exists); err != nil {
			if errors.Is(err, ErrSkip) {
				return nil
			}
			return err
		}
		err = s.write(v, version)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return err
	}
	applog.Error(nil, "store.save.conflict", ErrConflict, map[string]any{"name": s.name, "attempts": maxAttempts})
	return ErrConflict
}

// Save replaces the document with v.
func (s *JSON[T]) Save(v T) error {
	return s.Update(func(cur *T) error {
		*cur = v
		return nil
	})
}

// Seed writes v only when the document does not exist yet.
func (s *JSON[T]) Seed(v T) (seeded bool, err error) {
	err = s.update(func(cur *T, exists bool) error {
		seeded = false
		if exists {
			return ErrSkip
		}
		*cur = v
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func (s *JSON[T]) write(v T, version int64) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}
	if err := s.b.Write(s.name, data, version); err != nil {
		if !errors.Is(err, ErrConflict) {
			applog.Error(nil, "store.save.fail", err, map[string]any{"name": s.name})
			return fmt.Errorf("save %s: %w", s.name, err)
		}
		return err
	}
	return nil
}
