// Package httppage moves pages of items over HTTP.
//
// Handler serves any lazy.PageFetcher as a JSON endpoint:
//
//	GET /users?limit=50&page=2   ->   {"items": [...], "page": 2}
//
// and Fetcher consumes such an endpoint as a lazy.PageFetcher, so a
// sequence on one side of the wire can be rebuilt on the other:
//
//	client, err := httppage.NewClient(httppage.Config{BaseURL: "https://api.example.com"})
//	users := lazy.FromPagedFetch(50, 0, httppage.Fetcher[User](client, "/users"))
//
// When both sides share a PageTokenCodec the page index travels as an
// opaque page_token instead of page. Requests carry an X-Request-Id and,
// when configured, an HS256 bearer token.
package httppage
