package lazy

import (
	"context"
	"time"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
)

// PageFetcher returns page number page holding at most batchSize items.
// A page shorter than batchSize marks the end of the data; an empty page
// means there is nothing more. Pages are requested with strictly increasing
// page numbers, one at a time.
type PageFetcher[T any] func(ctx context.Context, batchSize, page int) ([]T, error)

// PageOption configures FromPagedFetch.
type PageOption func(*pageOptions)

type pageOptions struct {
	log      *logger.Logger
	maxPages int
}

// WithLogger logs every page fetch at debug level. A nil logger selects the
// global logger.
func WithLogger(l *logger.Logger) PageOption {
	return func(o *pageOptions) { o.log = logger.OrGlobal(l) }
}

// WithMaxPages stops the sequence after n fetches even if the last page was
// full. Zero means no limit.
func WithMaxPages(n int) PageOption {
	return func(o *pageOptions) { o.maxPages = n }
}

// FromPagedFetch creates a sequence that pulls items from fetch one page at a
// time, starting at startPage. A page is fetched only once every item of the
// previous page has been pulled. A page with fewer than batchSize items is the
// last one: its items are still yielded, but fetch is not called again.
//
// Invalid arguments are reported by the first pull as INVALID_ARGUMENT.
// Errors returned by fetch are reported as FETCH_FAILED and break the sequence.
func FromPagedFetch[T any](batchSize, startPage int, fetch PageFetcher[T], opts ...PageOption) *Sequence[T] {
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case batchSize <= 0:
		return failed[T](apperrors.InvalidArgument("batch size", "must be positive"))
	case startPage < 0:
		return failed[T](apperrors.InvalidArgument("start page", "must not be negative"))
	case fetch == nil:
		return failed[T](apperrors.InvalidArgument("fetcher", "must not be nil"))
	case o.maxPages < 0:
		return failed[T](apperrors.InvalidArgument("max pages", "must not be negative"))
	}

	s := newSequence[T](nil)
	log := o.log
	if log != nil {
		log = log.WithFields(logger.Fields(logger.FieldSequenceID, s.id, logger.FieldSource, "paged"))
	}
	s.provider = func() Iterator[T] {
		return &pagedIter[T]{
			fetch:     fetch,
			batchSize: batchSize,
			next:      startPage,
			maxPages:  o.maxPages,
			log:       log,
		}
	}
	return s
}

// pagedIter walks an index cursor over the current page instead of removing
// items from its front.
type pagedIter[T any] struct {
	fetch     PageFetcher[T]
	batchSize int
	maxPages  int
	log       *logger.Logger

	page     []T
	pos      int
	next     int
	fetches  int
	lastPage bool
}

func (it *pagedIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.pos >= len(it.page) {
		if it.lastPage {
			var zero T
			return zero, false, nil
		}
		if it.maxPages > 0 && it.fetches >= it.maxPages {
			it.lastPage = true
			continue
		}
		if err := it.fetchNext(ctx); err != nil {
			var zero T
			return zero, false, err
		}
	}
	val := it.page[it.pos]
	it.pos++
	return val, true, nil
}

func (it *pagedIter[T]) fetchNext(ctx context.Context) error {
	page := it.next
	start := time.Now()
	items, err := it.fetch(ctx, it.batchSize, page)
	it.fetches++
	if err != nil {
		if it.log != nil {
			it.log.Debug("page fetch failed", logger.MergeWithError(logger.Fields(logger.FieldPage, page), err))
		}
		return apperrors.FetchFailed(page, err)
	}

	it.page, it.pos = items, 0
	it.next++
	it.lastPage = len(items) < it.batchSize

	if it.log != nil {
		fields := logger.PageFields(page, it.batchSize, len(items))
		fields[logger.FieldLastPage] = it.lastPage
		fields[logger.FieldFetchCount] = it.fetches
		it.log.Debug("page fetched", logger.MergeWithDuration(fields, time.Since(start)))
	}
	return nil
}
