package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

/*
 * Connect establishes a connection to the PostgreSQL database using
 * environment variables and validates it with a ping before returning.
 *
 * Returns:
 *   - *sql.DB: Database connection pool if successful
 *   - error: Any error encountered during connection
 */
func Connect() (*sql.DB, error) {
	debug.Info("Attempting database connection")

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	debug.Debug("Database configuration - Host: %s, Port: %s, User: %s, Database: %s",
		dbHost, dbPort, dbUser, dbName)

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		debug.Error("Failed to open database connection: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		debug.Error("Failed to ping database: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	debug.Info("Successfully connected to database")
	return db, nil
}

/*
 * RunMigrations executes all pending database migrations from the
 * db/migrations directory, in order of their numeric prefix.
 *
 * Returns:
 *   - error: Any error encountered during migration, nil if successful.
 *            Returns nil if no migrations are pending (ErrNoChange).
 */
func RunMigrations() error {
	debug.Info("Starting database migrations")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	m, err := migrate.New(
		"file://db/migrations",
		connStr)
	if err != nil {
		debug.Error("Failed to create migration instance: %v", err)
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		debug.Error("Migration failed: %v", err)
		return err
	}
	debug.Info("Database migrations completed successfully")
	return nil
}
