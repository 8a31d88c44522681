// Package cache declares a pluggable store for compiled core.Machine
// values, keyed by a grammar's content hash (core.GrammarDigest).
// Since core.Translate is a pure function (spec.md §5 "Ordering
// guarantees"), the same key always maps to the same Machine, so a
// cache hit never needs to be invalidated by anything but the
// grammar's own text changing.
package cache

import "github.com/loomlang/loom/core"

// Cache gets and puts compiled Machines by grammar digest.
type Cache interface {
	Get(key string) (*core.Machine, bool, error)
	Put(key string, m *core.Machine) error
}

// CacheCorrupt occurs when a stored entry can't be decoded back into
// a Machine.
type CacheCorrupt struct {
	Key string
	Err error
}

func (e *CacheCorrupt) Error() string {
	return `cache entry "` + e.Key + `" is corrupt: ` + e.Err.Error()
}
