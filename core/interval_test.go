package core

import "testing"

func TestNewIntervalCoalesces(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  []Range
	}{
		{[]byte{'0', '1', '2', '3'}, []Range{{'0', '3'}}},
		{[]byte{'a', 'c', 'b'}, []Range{{'a', 'c'}}},
		{[]byte{5, 5, 5}, []Range{{5, 5}}},
		{[]byte{1, 3, 5}, []Range{{1, 1}, {3, 3}, {5, 5}}},
		{[]byte{255, 0, 254}, []Range{{0, 0}, {254, 255}}},
	}

	for _, c := range cases {
		got := NewInterval(c.bytes)
		if !got.Equal(&Interval{Ranges: c.want}) {
			t.Fatalf("NewInterval(%v) = %v, want %v", c.bytes, got.Ranges, c.want)
		}
	}
}

func TestIntervalContains(t *testing.T) {
	iv := NewIntervalFromRanges([]Range{{'a', 'f'}, {'0', '9'}})

	for _, b := range []byte{'a', 'c', 'f', '0', '9'} {
		if !iv.Contains(b) {
			t.Fatalf("expected %q to be contained", b)
		}
	}
	for _, b := range []byte{'g', '/', 'z', ' '} {
		if iv.Contains(b) {
			t.Fatalf("expected %q to not be contained", b)
		}
	}
}

func TestIntervalIntersects(t *testing.T) {
	a := NewIntervalFromRanges([]Range{{'a', 'm'}})
	b := NewIntervalFromRanges([]Range{{'n', 'z'}})
	if a.Intersects(b) {
		t.Fatal("disjoint ranges reported as intersecting")
	}

	c := NewIntervalFromRanges([]Range{{'m', 'z'}})
	if !a.Intersects(c) {
		t.Fatal("overlapping ranges reported as disjoint")
	}
}

func TestIntervalUnion(t *testing.T) {
	a := Single('a')
	b := Single('b')
	got := a.Union(b)
	want := NewIntervalFromRanges([]Range{{'a', 'b'}})
	if !got.Equal(want) {
		t.Fatalf("Union = %v, want %v", got.Ranges, want.Ranges)
	}
}

func TestIntervalBitmap(t *testing.T) {
	iv := NewIntervalFromRanges([]Range{{'0', '9'}})
	bm := iv.Bitmap()
	for b := 0; b < 256; b++ {
		want := b >= '0' && b <= '9'
		if bm[b] != want {
			t.Fatalf("bitmap[%d] = %v, want %v", b, bm[b], want)
		}
	}
}

func TestInternerStableInsertionOrder(t *testing.T) {
	n := newInterner()
	digits := NewIntervalFromRanges([]Range{{'0', '9'}})
	letters := NewIntervalFromRanges([]Range{{'a', 'z'}})

	if i := n.intern(digits); i != 0 {
		t.Fatalf("first intern = %d, want 0", i)
	}
	if i := n.intern(letters); i != 1 {
		t.Fatalf("second intern = %d, want 1", i)
	}
	if i := n.intern(NewIntervalFromRanges([]Range{{'0', '9'}})); i != 0 {
		t.Fatalf("re-interning equal Interval = %d, want 0", i)
	}
	if got := len(n.intervals()); got != 2 {
		t.Fatalf("intervals() length = %d, want 2", got)
	}
}
