package lazy

import (
	"context"
	"iter"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/lazyseq/errors"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
}

// Provider creates the iteration state of a sequence. It is called at most
// once per Sequence, on the first pull.
type Provider[T any] func() Iterator[T]

// Status is the position of a sequence in its lifecycle.
type Status int

const (
	// NotStarted means the provider has not been invoked yet.
	NotStarted Status = iota
	// Running means the iteration state exists and may yield more items.
	Running
	// Exhausted means upstream reported no more items. Terminal.
	Exhausted
	// Failed means a pull returned an error. Terminal.
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sequence is a lazily evaluated, single-traversal stream of values.
// The zero value is not usable; build sequences with the constructors in this
// package.
type Sequence[T any] struct {
	id       string
	provider Provider[T]

	state  Iterator[T]
	status Status
	err    error
}

func newSequence[T any](provider Provider[T]) *Sequence[T] {
	return &Sequence[T]{id: uuid.NewString(), provider: provider}
}

// ID returns the identifier attached to this sequence's log lines.
func (s *Sequence[T]) ID() string { return s.id }

// Status returns the current lifecycle status.
func (s *Sequence[T]) Status() Status { return s.status }

// Next pulls the next value. The first call creates the iteration state from
// the provider; later calls resume it. Once exhausted, Next keeps returning
// (zero, false, nil). Once failed, Next returns a SEQUENCE_BROKEN error that
// wraps the original failure.
func (s *Sequence[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	switch s.status {
	case Exhausted:
		return zero, false, nil
	case Failed:
		return zero, false, apperrors.SequenceBroken(s.err)
	}

	if s.state == nil {
		s.state = s.provider()
		s.status = Running
	}

	val, ok, err := s.state.Next(ctx)
	if err != nil {
		s.fail(err)
		return zero, false, err
	}
	if !ok {
		s.status = Exhausted
		s.state = nil
		return zero, false, nil
	}
	return val, true, nil
}

func (s *Sequence[T]) fail(err error) {
	s.status = Failed
	s.err = err
	s.state = nil
}

// Iter returns the sequence as an Iterator. A sequence is its own iterator:
// pulling through the result advances s.
func (s *Sequence[T]) Iter() Iterator[T] { return s }

// All returns a range-over-func view of the sequence. Items are pulled from s
// itself, so breaking out of the loop leaves the rest pullable. A failure is
// yielded once with a zero value and ends the loop.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			val, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(val, nil) {
				return
			}
		}
	}
}

// Collect drains the sequence into a slice. On failure the items collected so
// far are discarded and only the error is returned. Collect never returns for
// an unbounded sequence.
func (s *Sequence[T]) Collect(ctx context.Context) ([]T, error) {
	items, err := CollectPartial(ctx, s)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CollectPartial drains the sequence like Collect but, on failure, returns the
// items pulled before the failure together with the error.
func CollectPartial[T any](ctx context.Context, s *Sequence[T]) ([]T, error) {
	result := []T{}
	for {
		val, ok, err := s.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// Runnable is a fully-configured drain ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run pulls until exhaustion or the first error.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](s *Sequence[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			for {
				val, ok, err := s.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// ForEach pulls all values and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, s *Sequence[T], fn func(context.Context, T) error) error {
	return Drain(s, fn).Run(ctx)
}
