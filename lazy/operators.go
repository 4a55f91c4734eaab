package lazy

import (
	"context"

	apperrors "github.com/kbukum/lazyseq/errors"
)

// Stage names reported in CALLBACK_FAILED errors.
const (
	StageMap    = "map"
	StageFilter = "filter"
	StageTap    = "tap"
)

// Map transforms each value using fn, one output per input, in order.
func Map[I, O any](s *Sequence[I], fn func(context.Context, I) (O, error)) *Sequence[O] {
	if s == nil {
		return failed[O](apperrors.InvalidArgument("sequence", "must not be nil"))
	}
	if fn == nil {
		return failed[O](apperrors.InvalidArgument("map function", "must not be nil"))
	}
	return newSequence(func() Iterator[O] {
		return &mapIter[I, O]{source: s, fn: fn}
	})
}

// Filter keeps only values for which fn returns true. The predicate result is
// fully resolved before it is checked; a predicate error breaks the sequence.
func Filter[T any](s *Sequence[T], fn func(context.Context, T) (bool, error)) *Sequence[T] {
	if s == nil {
		return failed[T](apperrors.InvalidArgument("sequence", "must not be nil"))
	}
	if fn == nil {
		return failed[T](apperrors.InvalidArgument("predicate", "must not be nil"))
	}
	return newSequence(func() Iterator[T] {
		return &filterIter[T]{source: s, fn: fn}
	})
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
// Use for logging, metrics, or mid-pipeline publishing.
func Tap[T any](s *Sequence[T], fn func(context.Context, T) error) *Sequence[T] {
	if s == nil {
		return failed[T](apperrors.InvalidArgument("sequence", "must not be nil"))
	}
	if fn == nil {
		return failed[T](apperrors.InvalidArgument("tap function", "must not be nil"))
	}
	return newSequence(func() Iterator[T] {
		return &tapIter[T]{source: s, fn: fn}
	})
}

// Concat yields every value of first, then every value of each of rest in
// order. A later sequence is not pulled before the earlier one is exhausted.
func Concat[T any](first *Sequence[T], rest ...*Sequence[T]) *Sequence[T] {
	sources := make([]*Sequence[T], 0, 1+len(rest))
	sources = append(sources, first)
	sources = append(sources, rest...)
	for _, src := range sources {
		if src == nil {
			return failed[T](apperrors.InvalidArgument("sequence", "must not be nil"))
		}
	}
	return newSequence(func() Iterator[T] {
		return &concatIter[T]{sources: sources}
	})
}

// Batch groups consecutive values into slices of size. Every batch but the
// last holds exactly size values; the last holds the remainder. No batch is
// empty, and an empty upstream yields no batches.
func Batch[T any](s *Sequence[T], size int) *Sequence[[]T] {
	if s == nil {
		return failed[[]T](apperrors.InvalidArgument("sequence", "must not be nil"))
	}
	if size <= 0 {
		return failed[[]T](apperrors.InvalidArgument("batch size", "must be positive"))
	}
	return newSequence(func() Iterator[[]T] {
		return &batchIter[T]{source: s, size: size}
	})
}

// --- Iterator implementations ---

type mapIter[I, O any] struct {
	source *Sequence[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, apperrors.CallbackFailed(StageMap, err)
	}
	return out, true, nil
}

type filterIter[T any] struct {
	source *Sequence[T]
	fn     func(context.Context, T) (bool, error)
}

func (it *filterIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		keep, err := it.fn(ctx, val)
		if err != nil {
			var zero T
			return zero, false, apperrors.CallbackFailed(StageFilter, err)
		}
		if keep {
			return val, true, nil
		}
	}
}

type tapIter[T any] struct {
	source *Sequence[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		var zero T
		return zero, false, apperrors.CallbackFailed(StageTap, err)
	}
	return val, true, nil
}

type concatIter[T any] struct {
	sources []*Sequence[T]
	index   int
}

func (it *concatIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.index < len(it.sources) {
		val, ok, err := it.sources[it.index].Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		it.index++
	}
	var zero T
	return zero, false, nil
}

type batchIter[T any] struct {
	source *Sequence[T]
	size   int
}

func (it *batchIter[T]) Next(ctx context.Context) (result []T, ok bool, err error) {
	batch := make([]T, 0, it.size)
	for len(batch) < it.size {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		batch = append(batch, val)
	}
	if len(batch) == 0 {
		return nil, false, nil
	}
	return batch, true, nil
}
