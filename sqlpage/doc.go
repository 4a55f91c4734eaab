// Package sqlpage reads SQL tables page by page with LIMIT/OFFSET.
//
// With GORM:
//
//	db, err := sqlpage.Open(ctx, sqlite.Open("app.db"), sqlpage.Config{}, log)
//	orders := lazy.FromPagedFetch(200, 0, sqlpage.Gorm[Order](db, "id",
//	    func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", "open") }))
//
// With a squirrel query over database/sql:
//
//	q := squirrel.Select("id", "email").From("users").OrderBy("id")
//	users := lazy.FromPagedFetch(200, 0, sqlpage.Select(sqlDB, q, scanUser))
//
// Schemas can be prepared with golang-migrate through Migrate and Rollback.
//
// Both need a deterministic ordering; rows inserted or deleted while the
// sequence is read can shift page boundaries.
package sqlpage
