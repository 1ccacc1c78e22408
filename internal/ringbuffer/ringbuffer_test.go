package ringbuffer

import "testing"

func TestBuffer_PushTrimsToLimit(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	got := b.Items()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestBuffer_ZeroLimitKeepsNothing(t *testing.T) {
	b := New[string](0)
	b.Push("a")
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d items", b.Len())
	}
}

func TestBuffer_ItemsReturnsCopy(t *testing.T) {
	b := New[int](4)
	b.Push(1)
	b.Push(2)
	items := b.Items()
	items[0] = 99
	if b.Items()[0] != 1 {
		t.Fatalf("mutating the returned slice must not affect the buffer")
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := New[int](4)
	b.Push(1)
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("expected cleared buffer")
	}
}

func TestBuffer_NilSafe(t *testing.T) {
	var b *Buffer[int]
	b.Push(1)
	if b.Len() != 0 || b.Items() != nil {
		t.Fatalf("nil buffer must be inert")
	}
	b.Clear()
}
