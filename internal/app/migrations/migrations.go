// Package migrations applies the embedded SQL schema with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/yigit/offerdesk/internal/pkg/logger"
)

//go:embed sql/*.sql
var files embed.FS

// Direction selects what Run does
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

func runGoose(ctx context.Context, db *sql.DB, dir Direction) error {
	switch dir {
	case Up:
		return goose.UpContext(ctx, db, "sql")
	case Down:
		return goose.DownContext(ctx, db, "sql")
	case Status:
		return goose.StatusContext(ctx, db, "sql")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
}

// Run applies migrations against the pool through a database/sql handle
func Run(ctx context.Context, pool *pgxpool.Pool, dir Direction) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	logger.Info().Str("direction", string(dir)).Msg("Running database migrations")
	if err := runGoose(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations %s failed: %w", dir, err)
	}
	logger.Info().Str("direction", string(dir)).Msg("Database migrations finished")
	return nil
}
