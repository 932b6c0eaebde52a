package ident

import "testing"

func TestTableDensity(t *testing.T) {
	var tbl Table[TermId, string]
	a := tbl.Push("foo")
	b := tbl.Push("bar")
	if a != 0 || b != 1 {
		t.Fatalf("expected dense ids 0,1; got %d,%d", a, b)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected len 2, got %d", tbl.Len())
	}
	if tbl.Get(a) != "foo" || tbl.Get(b) != "bar" {
		t.Fatalf("unexpected table contents")
	}
}

func TestTableOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range Get")
		}
	}()
	var tbl Table[SortId, int]
	tbl.Get(0)
}

func TestDelimsSetGetMerge(t *testing.T) {
	var a, b Delims
	a.Set('(')
	b.Set(')')
	if !a.Get('(') || a.Get(')') {
		t.Fatalf("delim a state wrong")
	}
	a.Merge(b)
	if !a.Get('(') || !a.Get(')') {
		t.Fatalf("merge did not OR in b's bits")
	}
	if a.Get('x') {
		t.Fatalf("unrelated byte should not be set")
	}
}
