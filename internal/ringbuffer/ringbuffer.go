package ringbuffer

// Buffer retains the most recent limit items; older items are dropped as
// new ones arrive. Callers needing concurrent access synchronize externally.
type Buffer[T any] struct {
	limit int
	items []T
}

// New constructs a Buffer keeping at most limit items. A limit <= 0 keeps
// nothing.
func New[T any](limit int) *Buffer[T] {
	if limit < 0 {
		limit = 0
	}
	return &Buffer[T]{limit: limit}
}

// Push appends item, discarding the oldest entries beyond the limit.
func (b *Buffer[T]) Push(item T) {
	if b == nil || b.limit <= 0 {
		return
	}
	b.items = append(b.items, item)
	if len(b.items) > b.limit {
		b.items = b.items[len(b.items)-b.limit:]
	}
}

// Items returns a copy of the retained items, oldest first.
func (b *Buffer[T]) Items() []T {
	if b == nil {
		return nil
	}
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of retained items.
func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Clear drops all retained items.
func (b *Buffer[T]) Clear() {
	if b == nil {
		return
	}
	b.items = nil
}
