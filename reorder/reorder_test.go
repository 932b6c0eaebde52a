package reorder

import "testing"

func TestNewPreassignsParameterSlots(t *testing.T) {
	r := New(3)
	for i := 0; i < 3; i++ {
		v, ok := r.Get(i)
		if !ok || v != uint32(i) {
			t.Fatalf("expected param %d preassigned to %d, got %v, %v", i, i, v, ok)
		}
	}
	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}
}

func TestSaveAssignsNextIndex(t *testing.T) {
	r := New(2)
	idx := r.Save(10)
	if idx != 2 {
		t.Fatalf("expected first save to get index 2, got %d", idx)
	}
	idx2 := r.Save(11)
	if idx2 != 3 {
		t.Fatalf("expected second save to get index 3, got %d", idx2)
	}
	got, ok := r.Get(10)
	if !ok || got != 2 {
		t.Fatalf("expected heap index 10 saved at 2, got %v, %v", got, ok)
	}
}

func TestSaveAlreadySavedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double-save")
		}
	}()
	r := New(0)
	r.Save(5)
	r.Save(5)
}
