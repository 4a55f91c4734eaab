package sqlpage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// DriverFunc creates the golang-migrate driver for the database behind db,
// e.g. sqlite3.WithInstance or postgres.WithInstance.
type DriverFunc func(db *sql.DB) (database.Driver, error)

// Migrate applies every pending VERSION_name.up.sql migration found in dir
// of migrations. Having nothing to apply is not an error.
func Migrate(db *gorm.DB, migrations fs.FS, dir string, driver DriverFunc) error {
	m, src, err := newMigrator(db, migrations, dir, driver)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fromDatabase(fmt.Errorf("migrate up: %w", err))
	}
	return nil
}

// Rollback reverts the last n applied migrations.
func Rollback(db *gorm.DB, migrations fs.FS, dir string, n int, driver DriverFunc) error {
	if n <= 0 {
		return nil
	}
	m, src, err := newMigrator(db, migrations, dir, driver)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fromDatabase(fmt.Errorf("migrate down: %w", err))
	}
	return nil
}

// SchemaVersion reports the applied migration version. ok is false on a
// database that has never been migrated.
func SchemaVersion(db *gorm.DB, migrations fs.FS, dir string, driver DriverFunc) (version uint, dirty, ok bool, err error) {
	m, src, err := newMigrator(db, migrations, dir, driver)
	if err != nil {
		return 0, false, false, err
	}
	defer src.Close()
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fromDatabase(err)
	}
	return version, dirty, true, nil
}

// newMigrator must not be followed by m.Close, which would close the pool
// shared with gorm. Callers close the returned source instead.
func newMigrator(db *gorm.DB, migrations fs.FS, dir string, driverFn DriverFunc) (*migrate.Migrate, source.Driver, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fromDatabase(err)
	}
	driver, err := driverFn(sqlDB)
	if err != nil {
		return nil, nil, fromDatabase(fmt.Errorf("create migration driver: %w", err))
	}
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, db.Name(), driver)
	if err != nil {
		_ = src.Close()
		return nil, nil, fromDatabase(fmt.Errorf("create migrator: %w", err))
	}
	return m, src, nil
}
