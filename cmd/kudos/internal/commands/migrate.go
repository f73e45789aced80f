package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kudos/internal/platform/postgres"
)

type MigrateCmd struct {
	Up      MigrateUpCmd      `cmd:"" help:"Apply all pending migrations"`
	Down    MigrateDownCmd    `cmd:"" help:"Revert migrations"`
	Version MigrateVersionCmd `cmd:"" help:"Print the applied schema version"`
}

type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(ctx context.Context, globals *Globals) error {
	return withDatabase(ctx, globals, func(db *sql.DB) error {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	})
}

type MigrateDownCmd struct {
	Steps int `help:"Number of migrations to revert." default:"1"`
}

func (c *MigrateDownCmd) Run(ctx context.Context, globals *Globals) error {
	if c.Steps < 1 {
		return errors.New("steps must be at least 1")
	}
	return withDatabase(ctx, globals, func(db *sql.DB) error {
		if err := postgres.Rollback(db, c.Steps); err != nil {
			return err
		}
		fmt.Printf("reverted %d migration(s)\n", c.Steps)
		return nil
	})
}

type MigrateVersionCmd struct{}

func (c *MigrateVersionCmd) Run(ctx context.Context, globals *Globals) error {
	return withDatabase(ctx, globals, func(db *sql.DB) error {
		v, dirty, err := postgres.Version(db)
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		return nil
	})
}

func withDatabase(ctx context.Context, globals *Globals, fn func(db *sql.DB) error) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
