package redispage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
)

// Decoder turns one stored element into an item.
type Decoder[T any] func(raw string) (T, error)

// JSON decodes elements stored as JSON documents.
func JSON[T any]() Decoder[T] {
	return func(raw string) (T, error) {
		var v T
		err := json.Unmarshal([]byte(raw), &v)
		return v, err
	}
}

// String passes elements through unchanged.
func String() Decoder[string] {
	return func(raw string) (string, error) { return raw, nil }
}

// List returns a PageFetcher over the Redis list at key using LRANGE.
func List[T any](c *Client, key string, decode Decoder[T]) lazy.PageFetcher[T] {
	return func(ctx context.Context, batchSize, page int) ([]T, error) {
		start, stop := bounds(batchSize, page)
		raw, err := c.rdb.LRange(ctx, key, start, stop).Result()
		if err != nil {
			return nil, c.commandError("LRANGE", key, page, err)
		}
		return decodeAll(raw, decode, key)
	}
}

// SortedSet returns a PageFetcher over the sorted set at key in ascending
// score order using ZRANGE.
func SortedSet[T any](c *Client, key string, decode Decoder[T]) lazy.PageFetcher[T] {
	return func(ctx context.Context, batchSize, page int) ([]T, error) {
		start, stop := bounds(batchSize, page)
		raw, err := c.rdb.ZRange(ctx, key, start, stop).Result()
		if err != nil {
			return nil, c.commandError("ZRANGE", key, page, err)
		}
		return decodeAll(raw, decode, key)
	}
}

// Append pushes items to the tail of the list at key as JSON documents.
func Append[T any](ctx context.Context, c *Client, key string, items ...T) error {
	if len(items) == 0 {
		return nil
	}
	values := make([]any, len(items))
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return apperrors.InvalidArgument("item", err.Error())
		}
		values[i] = data
	}
	if err := c.rdb.RPush(ctx, key, values...).Err(); err != nil {
		return c.commandError("RPUSH", key, -1, err)
	}
	return nil
}

func bounds(batchSize, page int) (start, stop int64) {
	start = int64(page) * int64(batchSize)
	return start, start + int64(batchSize) - 1
}

func decodeAll[T any](raw []string, decode Decoder[T], key string) ([]T, error) {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		item, err := decode(r)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("decode element %d of %s: %w", i, key, err))
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) commandError(cmd, key string, page int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.log.Warn("redis command failed", logger.MergeWithError(logger.Fields("command", cmd, "key", key, logger.FieldPage, page), err))
	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		if strings.HasPrefix(redisErr.Error(), "WRONGTYPE") {
			return apperrors.InvalidArgument("key", fmt.Sprintf("%s does not hold the expected type", key)).WithCause(err)
		}
		return apperrors.ExternalServiceError(serviceName, err)
	}
	return apperrors.ConnectionFailed(serviceName, err)
}
