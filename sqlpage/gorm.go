package sqlpage

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
)

// Scope narrows the query of Gorm, e.g. with Where or Joins.
type Scope = func(*gorm.DB) *gorm.DB

// Gorm returns a PageFetcher reading rows of T ordered by orderBy.
// Every page runs as a fresh session so scopes never accumulate.
func Gorm[T any](db *gorm.DB, orderBy string, scopes ...Scope) lazy.PageFetcher[T] {
	return func(ctx context.Context, batchSize, page int) ([]T, error) {
		if orderBy == "" {
			return nil, apperrors.InvalidArgument("order by", "is required for stable paging")
		}
		var rows []T
		err := db.WithContext(ctx).
			Model(new(T)).
			Scopes(scopes...).
			Order(orderBy).
			Offset(page * batchSize).
			Limit(batchSize).
			Find(&rows).Error
		if err != nil {
			return nil, fromDatabase(err)
		}
		return rows, nil
	}
}
