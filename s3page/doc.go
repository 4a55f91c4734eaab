// Package s3page lists S3 objects page by page.
//
// S3 pages by continuation token rather than by offset, so the fetcher
// returned by Objects remembers the token that starts each page index it
// has seen. Pages are normally requested in increasing order; a jump ahead
// walks the listing forward from the furthest known token.
//
//	api, err := s3page.NewClient(ctx, s3page.Config{Region: "eu-west-1"})
//	objects := lazy.FromPagedFetch(500, 0, s3page.Objects(api, "logs", "2024/"))
package s3page
