package books

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"

	"tululu/internal/library"
	"tululu/internal/types"
)

// NewJSONReader publishes the aggregate written by the crawler. The file is read on
// every call so a new crawl is picked up without restart.
func NewJSONReader(path string) Reader {
	return &jsonReader{path: path}
}

type jsonReader struct {
	path string
}

func (j *jsonReader) load() ([]*types.Book, error) {
	bks, err := library.ReadJSON(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return bks, err
}

func (j *jsonReader) Search(_ context.Context, f Filter) ([]*types.Book, error) {
	bks, err := j.load()
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	genre := strings.ToLower(strings.TrimSpace(f.Genre))

	ret := make([]*types.Book, 0, len(bks))
	for _, b := range bks {
		if query != "" && !strings.Contains(strings.ToLower(b.Title), query) {
			continue
		}

		if genre != "" && !hasGenre(b, genre) {
			continue
		}

		ret = append(ret, b)
	}

	sort.SliceStable(ret, func(i, k int) bool {
		return ret[i].Title < ret[k].Title
	})

	if f.Offset > 0 {
		if f.Offset >= len(ret) {
			return make([]*types.Book, 0), nil
		}
		ret = ret[f.Offset:]
	}

	if f.Limit > 0 && f.Limit < len(ret) {
		ret = ret[:f.Limit]
	}

	return ret, nil
}

func hasGenre(b *types.Book, genre string) bool {
	for _, g := range b.Genres {
		if strings.ToLower(g) == genre {
			return true
		}
	}

	return false
}

func (j *jsonReader) Genres(_ context.Context) ([]string, error) {
	bks, err := j.load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ret := make([]string, 0)
	for _, b := range bks {
		for _, g := range b.Genres {
			if _, ok := seen[strings.ToLower(g)]; ok {
				continue
			}

			seen[strings.ToLower(g)] = struct{}{}
			ret = append(ret, g)
		}
	}

	sort.Strings(ret)

	return ret, nil
}
