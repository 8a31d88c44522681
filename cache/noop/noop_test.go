package noop

import (
	"testing"

	"github.com/loomlang/loom/cache"
	"github.com/loomlang/loom/core"
)

func TestImpl(t *testing.T) {
	var _ cache.Cache = NewStorage()
}

func TestGetPut(t *testing.T) {
	s := NewStorage()

	if _, found, err := s.Get("x"); err != nil || found {
		t.Fatalf("found=%v err=%v, want a clean miss", found, err)
	}

	m := &core.Machine{Names: []string{"a"}}
	if err := s.Put("x", m); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if !found || got != m {
		t.Fatalf("got=%v found=%v, want the same pointer back", got, found)
	}
}
