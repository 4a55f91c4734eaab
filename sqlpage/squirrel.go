package sqlpage

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
)

// RowScanner reads the current row.
type RowScanner[T any] func(*sql.Rows) (T, error)

// Select returns a PageFetcher running query with LIMIT and OFFSET set for
// each page. The query should carry its own ORDER BY.
func Select[T any](db *sql.DB, query sq.SelectBuilder, scan RowScanner[T]) lazy.PageFetcher[T] {
	return func(ctx context.Context, batchSize, page int) ([]T, error) {
		stmt, args, err := query.
			Limit(uint64(batchSize)).
			Offset(uint64(page) * uint64(batchSize)).
			ToSql()
		if err != nil {
			return nil, apperrors.InvalidArgument("query", err.Error())
		}

		rows, err := db.QueryContext(ctx, stmt, args...)
		if err != nil {
			return nil, fromDatabase(err)
		}
		defer func() { _ = rows.Close() }()

		items := make([]T, 0, batchSize)
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return nil, fromDatabase(err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, fromDatabase(err)
		}
		return items, nil
	}
}
