package fails

import (
	"context"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tululu/internal/types"
)

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) Repository {
	return &pgxRepo{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type pgxRepo struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxRecord struct {
	Id        uint64    `db:"id"`
	RunId     uuid.UUID `db:"run_id"`
	StartTime time.Time `db:"start_time"`
	Kind      string    `db:"kind"`
	ItemId    uint64    `db:"item_id"`
	Url       string    `db:"url"`
	Error     string    `db:"error"`
}

func (p *pgxRepo) Save(ctx context.Context, runId uuid.UUID, startTime time.Time, item types.FailedItem, failure error) error {
	sql, params, err := saveQuery(p.g, runId, startTime, item, failure)
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func saveQuery(g goqu.DialectWrapper, runId uuid.UUID, startTime time.Time, item types.FailedItem, failure error) (string, []any, error) {
	return g.Insert("fail").
		Rows(goqu.Record{
			"run_id":     runId.String(),
			"start_time": startTime,
			"kind":       string(item.Kind),
			"item_id":    item.Id,
			"url":        item.Url,
			"error":      failure.Error(),
		}).
		ToSQL()
}

func (p *pgxRepo) GetByRun(ctx context.Context, runId uuid.UUID) ([]*Record, error) {
	sql, params, err := p.g.From("fail").
		Where(goqu.C("run_id").Eq(runId.String())).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxRecord

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*Record, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &Record{
			Id:        row.Id,
			RunId:     row.RunId,
			StartTime: row.StartTime,
			Item: types.FailedItem{
				Kind: types.ItemKind(row.Kind),
				Id:   row.ItemId,
				Url:  row.Url,
			},
			Error: row.Error,
		})
	}

	return ret, nil
}
