package infra

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies (direction "up") or rolls back one step ("down") of the
// embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, direction string, logger Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: dialect: %w", err)
	}

	switch direction {
	case "up":
		if err := goose.UpContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("migrate: up: %w", err)
		}
	case "down":
		if err := goose.DownContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("migrate: down: %w", err)
		}
	case "status":
		if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("migrate: status: %w", err)
		}
	default:
		return fmt.Errorf("migrate: unknown direction %q", direction)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: version: %w", err)
	}
	logger.Info().Int64("version", version).Str("direction", direction).Msg("migrations applied")
	return nil
}
