package s3page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
)

// maxKeysPerCall is the most keys S3 returns from a single ListObjectsV2 call.
const maxKeysPerCall = 1000

// cursor records where each page starts in the listing.
type cursor struct {
	mu sync.Mutex
	// starts[i] is the continuation token for page i; nil for the first page.
	starts []*string
	// done is set once the listing has been read to the end.
	done      bool
	batchSize int
}

// Objects returns a PageFetcher over the objects in bucket whose keys start
// with prefix, in the lexicographic key order S3 lists them.
//
// The fetcher is stateful and must not be shared between sequences with
// different batch sizes.
func Objects(api ListObjectsV2API, bucket, prefix string) lazy.PageFetcher[types.Object] {
	cur := &cursor{starts: []*string{nil}}
	return func(ctx context.Context, batchSize, page int) ([]types.Object, error) {
		cur.mu.Lock()
		defer cur.mu.Unlock()

		if batchSize <= 0 {
			return nil, apperrors.InvalidArgument("batchSize", "must be positive")
		}
		if cur.batchSize != 0 && cur.batchSize != batchSize {
			return nil, apperrors.InvalidArgument("batchSize", fmt.Sprintf("listing started with %d, got %d", cur.batchSize, batchSize))
		}
		cur.batchSize = batchSize

		// Walk forward to the requested page when it has not been reached yet.
		for len(cur.starts) <= page {
			if cur.done {
				return nil, nil
			}
			last := len(cur.starts) - 1
			if _, err := cur.read(ctx, api, bucket, prefix, last); err != nil {
				return nil, err
			}
		}
		if page == len(cur.starts)-1 && cur.done {
			return nil, nil
		}
		return cur.read(ctx, api, bucket, prefix, page)
	}
}

// read lists one page starting at starts[page] and records the start of
// the following page. Several calls are made when batchSize exceeds what
// S3 returns at once.
func (c *cursor) read(ctx context.Context, api ListObjectsV2API, bucket, prefix string, page int) ([]types.Object, error) {
	token := c.starts[page]
	var objects []types.Object
	for len(objects) < c.batchSize {
		want := min(c.batchSize-len(objects), maxKeysPerCall)
		out, err := api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			MaxKeys:           aws.Int32(int32(want)),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, listError(bucket, page, err)
		}
		objects = append(objects, out.Contents...)
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			token = nil
			break
		}
		token = out.NextContinuationToken
	}

	if page == len(c.starts)-1 {
		if token == nil {
			c.done = true
		}
		c.starts = append(c.starts, token)
	}
	return objects, nil
}

func listError(bucket string, page int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return apperrors.NotFound("bucket " + bucket).WithCause(err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return apperrors.Unauthorized(apiErr.ErrorMessage()).WithCause(err)
		case "SlowDown":
			return apperrors.RateLimited().WithCause(err)
		}
		return apperrors.ExternalServiceError(serviceName, err).WithDetail("page", page)
	}
	return apperrors.ConnectionFailed(serviceName, err)
}
