package genres

import (
	"context"
	"log/slog"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) Repository {
	return &pgxRepo{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type pgxRepo struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxGenre struct {
	Id    uint16 `db:"id"`
	Title string `db:"title"`
}

func (p *pgxRepo) GetIdByTitles(ctx context.Context, titles ...string) (map[string]uint16, error) {
	if len(titles) == 0 {
		return make(map[string]uint16), nil
	}

	byLower := make(map[string][]string, len(titles))
	lowerTitles := make([]string, 0, len(titles))
	for _, title := range titles {
		lower := strings.ToLower(title)
		if _, ok := byLower[lower]; !ok {
			lowerTitles = append(lowerTitles, lower)
		}
		byLower[lower] = append(byLower[lower], title)
	}

	sql, params, err := p.g.From("genre").
		Where(goqu.L("lower(title)").In(lowerTitles)).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxGenre

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]uint16, len(titles))
	for _, row := range rows {
		for _, title := range byLower[strings.ToLower(row.Title)] {
			ret[title] = row.Id
		}
	}

	return ret, nil
}

func (p *pgxRepo) Insert(ctx context.Context, titles ...string) (map[string]uint16, error) {
	if len(titles) == 0 {
		return make(map[string]uint16), nil
	}

	vals := make([][]any, 0, len(titles))
	for _, title := range titles {
		vals = append(vals, []any{title})
	}

	sql, params, err := p.g.Insert("genre").
		Cols("title").
		Vals(vals...).
		OnConflict(goqu.DoNothing()).
		Returning("id", "title").
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows := make([]pgxGenre, 0, len(titles))

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]uint16, len(titles))
	for _, row := range rows {
		ret[row.Title] = row.Id
	}

	var missingTitles []string
	for _, title := range titles {
		if _, ok := ret[title]; !ok {
			missingTitles = append(missingTitles, title)
		}
	}

	// Inserted concurrently or differ only in case from a stored title
	if len(missingTitles) > 0 {
		moreIds, err := p.GetIdByTitles(ctx, missingTitles...)
		if err != nil {
			return nil, err
		}

		for title, id := range moreIds {
			ret[title] = id
		}
	}

	return ret, nil
}

func (p *pgxRepo) EnsureIds(ctx context.Context, titles ...string) (map[string]uint16, error) {
	ids, err := p.GetIdByTitles(ctx, titles...)
	if err != nil {
		return nil, err
	}

	var newTitles []string
	for _, title := range titles {
		if _, ok := ids[title]; !ok {
			newTitles = append(newTitles, title)
		}
	}

	if len(newTitles) == 0 {
		return ids, nil
	}

	p.l.DebugContext(ctx, "Inserting new genres: "+strings.Join(newTitles, ", "))

	inserted, err := p.Insert(ctx, newTitles...)
	if err != nil {
		return nil, err
	}

	for title, id := range inserted {
		ids[title] = id
	}

	return ids, nil
}

func (p *pgxRepo) GetAll(ctx context.Context) ([]string, error) {
	sql, params, err := p.g.From("genre").
		Select(goqu.C("title")).
		Order(goqu.C("title").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []string

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
