package lazy

import (
	"context"
	"slices"

	apperrors "github.com/kbukum/lazyseq/errors"
)

// FromSlice creates a sequence over a snapshot of items. Changing items after
// the call has no effect on what the sequence yields.
func FromSlice[T any](items []T) *Sequence[T] {
	snapshot := slices.Clone(items)
	return newSequence(func() Iterator[T] {
		return &sliceIter[T]{items: snapshot}
	})
}

// FromFunc creates a sequence from a provider. The provider runs on the first
// pull, once.
func FromFunc[T any](provider Provider[T]) *Sequence[T] {
	if provider == nil {
		return failed[T](apperrors.InvalidArgument("provider", "must not be nil"))
	}
	return newSequence(provider)
}

// From creates a sequence that pulls from an existing Iterator.
func From[T any](it Iterator[T]) *Sequence[T] {
	if it == nil {
		return failed[T](apperrors.InvalidArgument("iterator", "must not be nil"))
	}
	return newSequence(func() Iterator[T] { return it })
}

// Empty returns a sequence with no items.
func Empty[T any]() *Sequence[T] {
	return newSequence(func() Iterator[T] { return &sliceIter[T]{} })
}

// failed returns a sequence whose first pull reports err. Argument errors are
// deferred to the first pull so construction never fails.
func failed[T any](err error) *Sequence[T] {
	return newSequence(func() Iterator[T] { return errIter[T]{err: err} })
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

type errIter[T any] struct {
	err error
}

func (it errIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	return zero, false, it.err
}
