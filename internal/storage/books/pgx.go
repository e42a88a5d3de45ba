package books

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"tululu/internal/types"
)

var (
	subGenres = goqu.Select(goqu.L("array_agg(genre.title order by book_genre.genre_order)")).
		From("book_genre").
		Join(goqu.T("genre"), goqu.On(
			goqu.C("id").Table("genre").
				Eq(goqu.C("genre_id").Table("book_genre")),
		)).
		Where(goqu.C("book_id").Table("book_genre").Eq(goqu.C("id").Table("book")))
)

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) Repository {
	return &pgxRepo{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type pgxRepo struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxBook struct {
	Id       uint64   `db:"id"`
	Title    string   `db:"title"`
	Author   string   `db:"author"`
	ImgSrc   string   `db:"img_src"`
	Comments []string `db:"comments"` // jsonb
}

type pgxBookFull struct {
	Base   pgxBook  `db:""` // follow
	Genres []string `db:"genres"`
}

func (b *pgxBookFull) intoCommon() *types.Book {
	comments := b.Base.Comments
	if comments == nil {
		comments = make([]string, 0)
	}

	genres := b.Genres
	if genres == nil {
		genres = make([]string, 0)
	}

	return &types.Book{
		Id:       types.BookId(b.Base.Id),
		Title:    b.Base.Title,
		Author:   b.Base.Author,
		ImgSrc:   b.Base.ImgSrc,
		Comments: comments,
		Genres:   genres,
	}
}

func (p *pgxRepo) Save(ctx context.Context, books ...*types.Book) error {
	sql, params, err := saveQuery(p.g, books...)
	if err != nil || sql == "" {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func saveQuery(g goqu.DialectWrapper, books ...*types.Book) (string, []any, error) {
	if len(books) == 0 {
		return "", nil, nil
	}

	rows := make([]any, 0, len(books))
	for _, book := range books {
		comments := book.Comments
		if comments == nil {
			comments = make([]string, 0)
		}

		cs, err := json.Marshal(comments)
		if err != nil {
			return "", nil, err
		}

		rows = append(rows, goqu.Record{
			"id":       uint64(book.Id),
			"title":    book.Title,
			"author":   book.Author,
			"img_src":  book.ImgSrc,
			"comments": string(cs),
		})
	}

	return g.Insert("book").
		Rows(rows...).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"title":    goqu.L("excluded.title"),
			"author":   goqu.L("excluded.author"),
			"img_src":  goqu.L("excluded.img_src"),
			"comments": goqu.L("excluded.comments"),
		})).
		ToSQL()
}

func (p *pgxRepo) LinkBookAndGenres(ctx context.Context, bookId types.BookId, genreIds ...uint16) error {
	sql, params, err := p.g.Delete("book_genre").
		Where(goqu.C("book_id").Eq(uint64(bookId))).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	if err != nil {
		return err
	}

	if len(genreIds) == 0 {
		return nil
	}

	type row struct {
		BookId     uint64 `db:"book_id"`
		GenreId    uint16 `db:"genre_id"`
		GenreOrder uint16 `db:"genre_order"`
	}

	rows := make([]any, 0, len(genreIds))

	for ix, genreId := range genreIds {
		rows = append(rows, row{
			BookId:     uint64(bookId),
			GenreId:    genreId,
			GenreOrder: uint16(ix + 1),
		})
	}

	sql, params, err = p.g.Insert("book_genre").
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func (p *pgxRepo) Search(ctx context.Context, f Filter) ([]*types.Book, error) {
	sql, params, err := searchQuery(p.g, f)
	if err != nil {
		return nil, err
	}

	var rows []pgxBookFull

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*types.Book, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, row.intoCommon())
	}

	return ret, nil
}

func searchQuery(g goqu.DialectWrapper, f Filter) (string, []any, error) {
	qb := g.From("book").
		Select("book.*", subGenres.As("genres")).
		Order(goqu.C("title").Table("book").Asc(), goqu.C("id").Table("book").Asc())

	if f.Limit > 0 {
		qb = qb.Limit(uint(f.Limit))
	}

	if f.Offset > 0 {
		qb = qb.Offset(uint(f.Offset))
	}

	query := strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(f.Query),
		"\\", "\\\\"),
		"_", "\\_"),
		"%", "\\%")
	if query != "" {
		qb = qb.Where(goqu.C("title").Table("book").ILike("%" + query + "%"))
	}

	genre := strings.TrimSpace(f.Genre)
	if genre != "" {
		qb = qb.Where(goqu.C("id").Table("book").In(
			goqu.Select("book_id").
				From("book_genre").
				Join(goqu.T("genre"), goqu.On(
					goqu.C("id").Table("genre").Eq(goqu.C("genre_id").Table("book_genre")),
				)).
				Where(goqu.L("lower(genre.title)").Eq(strings.ToLower(genre))),
		))
	}

	return qb.ToSQL()
}

func (p *pgxRepo) Genres(ctx context.Context) ([]string, error) {
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
