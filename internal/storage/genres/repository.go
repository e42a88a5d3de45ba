package genres

import (
	"context"
)

type Repository interface {
	// GetIdByTitles matches titles case-insensitively, keys of the result are the titles as given
	GetIdByTitles(ctx context.Context, titles ...string) (map[string]uint16, error)

	Insert(ctx context.Context, titles ...string) (map[string]uint16, error)

	// EnsureIds returns ids of all titles, inserting the unknown ones
	EnsureIds(ctx context.Context, titles ...string) (map[string]uint16, error)

	GetAll(ctx context.Context) ([]string, error)
}
