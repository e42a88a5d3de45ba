package tululu

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tululu/internal/storage/books"
	"tululu/internal/storage/fails"
	"tululu/internal/types"
)

type memBooks struct {
	books.Repository // methods the consumer never calls panic

	saved []*types.Book
	links map[types.BookId][]uint16
}

func (m *memBooks) Save(_ context.Context, bks ...*types.Book) error {
	m.saved = append(m.saved, bks...)
	return nil
}

func (m *memBooks) LinkBookAndGenres(_ context.Context, bookId types.BookId, genreIds ...uint16) error {
	if m.links == nil {
		m.links = make(map[types.BookId][]uint16)
	}
	m.links[bookId] = genreIds
	return nil
}

type memGenres struct {
	ids map[string]uint16
}

func (m *memGenres) GetIdByTitles(_ context.Context, titles ...string) (map[string]uint16, error) {
	ret := make(map[string]uint16)
	for _, t := range titles {
		if id, ok := m.ids[strings.ToLower(t)]; ok {
			ret[t] = id
		}
	}
	return ret, nil
}

func (m *memGenres) Insert(_ context.Context, titles ...string) (map[string]uint16, error) {
	ret := make(map[string]uint16)
	for _, t := range titles {
		id := uint16(len(m.ids) + 1)
		m.ids[strings.ToLower(t)] = id
		ret[t] = id
	}
	return ret, nil
}

func (m *memGenres) EnsureIds(ctx context.Context, titles ...string) (map[string]uint16, error) {
	ret, _ := m.GetIdByTitles(ctx, titles...)

	var missing []string
	for _, t := range titles {
		if _, ok := ret[t]; !ok {
			missing = append(missing, t)
		}
	}

	inserted, _ := m.Insert(ctx, missing...)
	for t, id := range inserted {
		ret[t] = id
	}
	return ret, nil
}

func (m *memGenres) GetAll(_ context.Context) ([]string, error) {
	return nil, nil
}

func TestStoringConsumer(t *testing.T) {
	bs := &memBooks{}
	gs := &memGenres{ids: map[string]uint16{"классика": 7}}
	c := &StoringConsumer{Logger: discardLogger(), Books: bs, Genres: gs}

	err := c.ConsumeBook(context.Background(), &types.Book{
		Id:     9,
		Title:  "Дубровский",
		Genres: []string{"Повести", "Классика", "повести"},
	})
	require.NoError(t, err)

	require.Len(t, bs.saved, 1)
	assert.Equal(t, []uint16{2, 7}, bs.links[9])
}

type memFails struct {
	records []*fails.Record
}

func (m *memFails) Save(_ context.Context, runId uuid.UUID, startTime time.Time, item types.FailedItem, failure error) error {
	m.records = append(m.records, &fails.Record{
		Id:        uint64(len(m.records) + 1),
		RunId:     runId,
		StartTime: startTime,
		Item:      item,
		Error:     failure.Error(),
	})
	return nil
}

func (m *memFails) GetByRun(_ context.Context, runId uuid.UUID) ([]*fails.Record, error) {
	var ret []*fails.Record
	for _, r := range m.records {
		if r.RunId == runId {
			ret = append(ret, r)
		}
	}
	return ret, nil
}

func TestMultiHandler(t *testing.T) {
	journal := &memFails{}
	runId := uuid.New()
	rec := &recordingHandler{}

	h := MultiHandler{
		&LoggingHandler{Logger: discardLogger()},
		&StoringHandler{RunId: runId, StartTime: time.Now(), Fails: journal},
		rec,
	}

	item := types.MakeFailedBook(11, "https://tululu.org/b11/")
	require.NoError(t, h.Handle(context.Background(), item, ErrRedirect))

	stored, err := journal.GetByRun(context.Background(), runId)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, item, stored[0].Item)
	assert.Equal(t, ErrRedirect.Error(), stored[0].Error)
	assert.Len(t, rec.fails, 1)
}

type failingConsumer struct{}

func (failingConsumer) ConsumeBook(context.Context, *types.Book) error {
	return errors.New("disk full")
}

func TestMultiConsumerCallsEveryone(t *testing.T) {
	rec := &recordingConsumer{}

	err := MultiConsumer{failingConsumer{}, rec}.ConsumeBook(context.Background(), &types.Book{Id: 3})
	require.EqualError(t, err, "disk full")
	assert.Equal(t, []types.BookId{3}, rec.ids)
}
