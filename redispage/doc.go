// Package redispage reads Redis lists and sorted sets page by page.
//
//	client, err := redispage.New(redispage.Config{Addr: "localhost:6379"}, log)
//	events := lazy.FromPagedFetch(100, 0, redispage.List(client, "events", redispage.JSON[Event]()))
//
// Page n of size s covers the range [n*s, n*s+s-1], so a page shorter than
// s ends the sequence exactly when the key runs out of elements.
package redispage
