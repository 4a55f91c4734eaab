// Package lazy provides a lazy, pull-based sequence for paginated retrieval
// and the pipeline of transformations applied on top of it.
//
// A Sequence does nothing when it is built. Its provider is invoked on the
// first pull and never again; every later pull resumes the same iteration
// state. Each combinator wraps the sequence it was given in a new stage and
// pulls from it on demand, so a page is fetched only when the consumer
// actually asks for an item the buffered page cannot supply.
//
// # Sources
//
//   - FromPagedFetch: drive a PageFetcher page by page until a short page
//   - FromSlice: snapshot a slice
//   - FromFunc, From: wrap a provider or an existing Iterator
//   - Concat: exhaust several sequences one after another
//
// # Operators
//
//   - Map: transform each item
//   - Filter: keep items whose predicate returns true
//   - Tap: run a side effect and pass the item through unchanged
//   - Batch: group consecutive items into fixed-size slices
//
// # Consumption
//
//	users := lazy.FromPagedFetch(100, 0, listUsers)
//	active := lazy.Filter(users, func(_ context.Context, u User) (bool, error) {
//	    return u.Active, nil
//	})
//	for batch, err := range lazy.Batch(active, 25).All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    notify(batch)
//	}
//
// A sequence is traversed once. It is not safe for concurrent pulls; callers
// that share one across goroutines must serialize access themselves. A failed
// pull leaves the sequence broken: later pulls report SEQUENCE_BROKEN.
package lazy
