package bolt

import (
	"os"
	"testing"

	"github.com/loomlang/loom/cache"
	"github.com/loomlang/loom/core"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ cache.Cache = &Storage{}
}

func TestBasics(t *testing.T) {
	filename := os.TempDir() + "/loom-cache-test.db"

	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	if _, found, err := s.Get("missing"); err != nil || found {
		t.Fatalf("found=%v err=%v, want a clean miss", found, err)
	}

	m := &core.Machine{
		Names:  []string{"start"},
		Nodes:  []core.Inst{{Body: core.ErrorInst(0)}},
		Mapper: map[string]int{"start": 0},
	}
	if err := s.Put("digest-a", m); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.Get("digest-a")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a hit")
	}
	if len(got.Names) != 1 || got.Names[0] != "start" {
		t.Fatalf("Names = %v", got.Names)
	}
	if got.Mapper["start"] != 0 {
		t.Fatalf("Mapper = %v", got.Mapper)
	}
}
