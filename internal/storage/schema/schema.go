package schema

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var SQL string

// Apply creates missing tables. It is safe to run on every start.
func Apply(ctx context.Context, pg *pgxpool.Pool) error {
	_, err := pg.Exec(ctx, SQL)
	return err
}
