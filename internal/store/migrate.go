package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies all pending SQL migrations from sourceDir before the pool
// is opened. It uses a short-lived database/sql handle because the migrate
// driver does not speak the pgx native protocol.
func Migrate(dbURL, sourceDir string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+sourceDir, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("init migrations from %s: %w", sourceDir, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Println("store: database schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	logger.Println("store: database migrations applied")
	return nil
}
