package runtime

// WorkList is a growable sequence drained through an index cursor. Items
// pushed while a drain is running are visited by that same drain, so
// re-entrant additions never get lost and never cause recursion.
type WorkList[T any] struct {
	items  []T
	cursor int
}

// Push appends an item.
func (w *WorkList[T]) Push(v T) {
	w.items = append(w.items, v)
}

// Len returns the number of items not yet visited.
func (w *WorkList[T]) Len() int {
	return len(w.items) - w.cursor
}

// Drain visits pending items in insertion order, including items pushed
// during the drain, then empties the list.
func (w *WorkList[T]) Drain(fn func(T)) {
	for w.cursor < len(w.items) {
		v := w.items[w.cursor]
		w.cursor++
		fn(v)
	}
	w.Reset()
}

// DrainReverse visits pending items newest first. Items pushed during the
// drain form a new batch that is visited, newest first, once the current
// batch is done.
func (w *WorkList[T]) DrainReverse(fn func(T)) {
	for w.cursor < len(w.items) {
		start, end := w.cursor, len(w.items)
		w.cursor = end
		for i := end - 1; i >= start; i-- {
			fn(w.items[i])
		}
	}
	w.Reset()
}

// Reset drops every item and rewinds the cursor.
func (w *WorkList[T]) Reset() {
	var zero T
	for i := range w.items {
		w.items[i] = zero
	}
	w.items = w.items[:0]
	w.cursor = 0
}
