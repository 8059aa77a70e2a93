// Package store persists whole collections as JSON documents behind a small
// Backend interface. Every backend replaces a document atomically; callers
// doing read-modify-write go through JSON.Update, which serializes them.
package store

import (
	"errors"
	"sync"
)

// ErrConflict reports that the document changed between read and write.
var ErrConflict = errors.New("store: concurrent write detected")

// Snapshot is a document as last persisted. Data is nil when the document
// does not exist yet.
type Snapshot struct {
	Data    []byte
	Version int64
}

type Backend interface {
	Read(name string) (Snapshot, error)
	// Write replaces the document. Backends that support it reject the
	// write with ErrConflict unless the stored version still equals expect.
	Write(name string, data []byte, expect int64) error
	// Locate returns a stable identity for the document, used to key
	// process-wide locks.
	Locate(name string) string
}

var locks sync.Map // identity -> *sync.Mutex

func lockFor(key string) *sync.Mutex {
	m, _ := locks.LoadOrStore(key, &sync.Mutex{})
	return m.(*sync.Mutex)
}
