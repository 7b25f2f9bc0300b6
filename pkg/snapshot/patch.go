package snapshot

// Field merge rules shared by ingestion and enrichment.

// keepIfAbsent takes next unless it is the zero value.
func keepIfAbsent[T comparable](prev, next T) T {
	var zero T
	if next == zero {
		return prev
	}
	return next
}

// keepSliceIfAbsent takes next unless it is empty.
func keepSliceIfAbsent[T any](prev, next []T) []T {
	if len(next) == 0 {
		return prev
	}
	return next
}

// keepPtrIfAbsent takes next unless it is nil.
func keepPtrIfAbsent[T any](prev, next *T) *T {
	if next == nil {
		return prev
	}
	return next
}

// overwriteAlways takes next, even when it is the zero value.
func overwriteAlways[T any](_, next T) T {
	return next
}

// sticky is a value that, once locked, only an explicit set may replace.
type sticky[T any] struct {
	Value  T
	Locked bool
}

// stickyOnceSet offers next to a possibly locked value. A locked value wins.
func stickyOnceSet[T any](prev sticky[T], next T) sticky[T] {
	if prev.Locked {
		return prev
	}
	return sticky[T]{Value: next}
}

// lock replaces the value and locks it.
func lock[T any](next T) sticky[T] {
	return sticky[T]{Value: next, Locked: true}
}
