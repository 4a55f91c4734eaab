package lazy

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
)

// pageSource serves fixed pages and records every call.
type pageSource struct {
	pages [][]int
	calls []int
	sizes []int
}

func (p *pageSource) fetch(_ context.Context, batchSize, page int) ([]int, error) {
	p.calls = append(p.calls, page)
	p.sizes = append(p.sizes, batchSize)
	if page >= len(p.pages) {
		return nil, nil
	}
	return p.pages[page], nil
}

// rangeSource serves total items split into pages of batchSize.
func rangeSource(total int) (PageFetcher[int], *[]int) {
	var calls []int
	return func(_ context.Context, batchSize, page int) ([]int, error) {
		calls = append(calls, page)
		start := page * batchSize
		if start >= total {
			return []int{}, nil
		}
		end := min(start+batchSize, total)
		out := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, i)
		}
		return out, nil
	}, &calls
}

func TestFromPagedFetch_ShortLastPage(t *testing.T) {
	src := &pageSource{pages: [][]int{{1, 2, 3}, {4, 5}}}
	got, err := FromPagedFetch(3, 0, src.fetch).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("got %v, want [1 2 3 4 5]", got)
	}
	if !intSliceEqual(src.calls, []int{0, 1}) {
		t.Errorf("fetch calls = %v, want [0 1]", src.calls)
	}
	if !intSliceEqual(src.sizes, []int{3, 3}) {
		t.Errorf("batch sizes = %v, want [3 3]", src.sizes)
	}
}

func TestFromPagedFetch_EmptyPageTerminates(t *testing.T) {
	src := &pageSource{pages: [][]int{{1, 2}, {3, 4}, {}}}
	got, err := FromPagedFetch(2, 0, src.fetch).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("got %v", got)
	}
	if !intSliceEqual(src.calls, []int{0, 1, 2}) {
		t.Errorf("fetch calls = %v, want [0 1 2]", src.calls)
	}
}

func TestFromPagedFetch_EmptyFirstPage(t *testing.T) {
	src := &pageSource{}
	got, err := FromPagedFetch(10, 0, src.fetch).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 || len(src.calls) != 1 {
		t.Errorf("got %v after %d calls", got, len(src.calls))
	}
}

func TestFromPagedFetch_StartPage(t *testing.T) {
	fetch, calls := rangeSource(10)
	got, err := FromPagedFetch(4, 1, fetch).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{4, 5, 6, 7, 8, 9}) {
		t.Errorf("got %v", got)
	}
	if !intSliceEqual(*calls, []int{1, 2}) {
		t.Errorf("calls = %v, want [1 2]", *calls)
	}
}

func TestFromPagedFetch_StopsAfterShortNonEmptyPage(t *testing.T) {
	tests := []struct {
		total     int
		batchSize int
		wantCalls int
	}{
		{total: 0, batchSize: 3, wantCalls: 1},
		{total: 1, batchSize: 3, wantCalls: 1},
		{total: 3, batchSize: 3, wantCalls: 2},
		{total: 7, batchSize: 3, wantCalls: 3},
		{total: 9, batchSize: 3, wantCalls: 4},
		{total: 10, batchSize: 1, wantCalls: 11},
	}
	for _, tt := range tests {
		fetch, calls := rangeSource(tt.total)
		got, err := FromPagedFetch(tt.batchSize, 0, fetch).Collect(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.total {
			t.Errorf("total=%d size=%d: got %d items", tt.total, tt.batchSize, len(got))
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("total=%d: item %d = %d, order broken", tt.total, i, v)
			}
		}
		if len(*calls) != tt.wantCalls {
			t.Errorf("total=%d size=%d: %d fetches, want %d", tt.total, tt.batchSize, len(*calls), tt.wantCalls)
		}
	}
}

func TestFromPagedFetch_LazyFetching(t *testing.T) {
	fetch, calls := rangeSource(100)
	s := FromPagedFetch(10, 0, fetch)
	ctx := context.Background()

	if len(*calls) != 0 {
		t.Fatalf("construction fetched %v", *calls)
	}
	for i := 0; i < 10; i++ {
		if _, _, err := s.Next(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(*calls) != 1 {
		t.Errorf("after draining one page: %d fetches, want 1", len(*calls))
	}
	if _, _, err := s.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if len(*calls) != 2 {
		t.Errorf("after first item of page two: %d fetches, want 2", len(*calls))
	}
}

func TestFromPagedFetch_NoFetchAfterExhaustion(t *testing.T) {
	src := &pageSource{pages: [][]int{{1}}}
	s := FromPagedFetch(2, 0, src.fetch)
	ctx := context.Background()
	if _, err := s.Collect(ctx); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, ok, err := s.Next(ctx); ok || err != nil {
			t.Fatalf("pull after exhaustion: ok=%v err=%v", ok, err)
		}
	}
	if len(src.calls) != 1 {
		t.Errorf("fetch calls = %v, want one", src.calls)
	}
}

func TestFromPagedFetch_FetchError(t *testing.T) {
	boom := errors.New("upstream down")
	calls := 0
	fetch := func(_ context.Context, batchSize, page int) ([]int, error) {
		calls++
		if page == 1 {
			return nil, boom
		}
		return []int{1, 2}, nil
	}
	s := FromPagedFetch(2, 0, fetch)
	got, err := CollectPartial(context.Background(), s)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeFetchFailed) {
		t.Errorf("err = %v, want FETCH_FAILED", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["page"] != 1 {
		t.Errorf("page detail = %v, want 1", appErr.Details["page"])
	}
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("partial = %v", got)
	}

	// No retry: the broken sequence never calls the fetcher again.
	if _, _, err := s.Next(context.Background()); !apperrors.HasCode(err, apperrors.ErrCodeSequenceBroken) {
		t.Errorf("err = %v, want SEQUENCE_BROKEN", err)
	}
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}
}

func TestFromPagedFetch_InvalidArguments(t *testing.T) {
	fetch, calls := rangeSource(5)
	tests := []struct {
		name string
		seq  *Sequence[int]
	}{
		{"zero batch", FromPagedFetch(0, 0, fetch)},
		{"negative batch", FromPagedFetch(-1, 0, fetch)},
		{"negative page", FromPagedFetch(2, -1, fetch)},
		{"nil fetcher", FromPagedFetch[int](2, 0, nil)},
		{"negative max pages", FromPagedFetch(2, 0, fetch, WithMaxPages(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.seq.Collect(context.Background())
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument) {
				t.Errorf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
	if len(*calls) != 0 {
		t.Errorf("invalid sequences fetched %v", *calls)
	}
}

func TestFromPagedFetch_MaxPages(t *testing.T) {
	fetch, calls := rangeSource(100)
	got, err := FromPagedFetch(5, 0, fetch, WithMaxPages(2)).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 || len(*calls) != 2 {
		t.Errorf("got %d items after %d fetches", len(got), len(*calls))
	}
}

func TestFromPagedFetch_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	var seen any
	fetch := func(ctx context.Context, _, _ int) ([]int, error) {
		seen = ctx.Value(key{})
		return nil, nil
	}
	if _, err := FromPagedFetch(1, 0, fetch).Collect(ctx); err != nil {
		t.Fatal(err)
	}
	if seen != "v" {
		t.Errorf("fetcher did not receive the pull context")
	}
}

func TestFromPagedFetch_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	src := &pageSource{pages: [][]int{{1, 2}, {3}}}

	s := FromPagedFetch(2, 0, src.fetch, WithLogger(log))
	if _, err := s.Collect(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "page fetched") != 2 {
		t.Errorf("expected two page lines, got %q", out)
	}
	if !strings.Contains(out, s.ID()) {
		t.Errorf("log lines should carry the sequence id")
	}
	if !strings.Contains(out, `"last_page":true`) {
		t.Errorf("last page not logged: %q", out)
	}
}
