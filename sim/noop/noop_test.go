package noop

import (
	"context"
	"testing"
)

func TestRuntimeArbitraryReturnsZero(t *testing.T) {
	r := NewRuntime()
	v, err := r.Arbitrary(context.Background(), 3, []uint64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("v = %d, want 0", v)
	}
}

func TestRuntimeSpanReturnsZero(t *testing.T) {
	r := NewRuntime()
	v, err := r.Span(context.Background(), "word", 0, 3, []byte("cat"))
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("v = %d, want 0", v)
	}
}

func TestRuntimeNotSilentStillReturnsZero(t *testing.T) {
	r := &Runtime{Silent: false}
	if v, err := r.Arbitrary(context.Background(), 0, nil); err != nil || v != 0 {
		t.Fatalf("v, err = %d, %v, want 0, nil", v, err)
	}
}
