// Package database owns the Postgres schema and its migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Commands accepted by Run.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandStatus  = "status"
	CommandVersion = "version"
)

func init() {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.New(io.Discard, "", 0))
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, dsn string) error {
	return Run(ctx, dsn, CommandUp)
}

// Run executes a goose command against dsn.
func Run(ctx context.Context, dsn, command string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	switch command {
	case CommandUp:
		err = goose.Up(db, migrationsDir)
	case CommandDown:
		err = goose.Down(db, migrationsDir)
	case CommandStatus:
		err = goose.Status(db, migrationsDir)
	case CommandVersion:
		err = goose.Version(db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations (%s): %w", command, err)
	}

	return nil
}

// SetVerbose routes goose output to w.
func SetVerbose(w io.Writer) {
	goose.SetLogger(log.New(w, "", log.LstdFlags))
}

// Migrations returns the embedded migration file names in order.
func Migrations() ([]string, error) {
	entries, err := embedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
