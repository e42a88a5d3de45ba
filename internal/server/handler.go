package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tululu/internal/response"
	"tululu/internal/storage/books"
	"tululu/internal/types"
)

// Handler publishes a downloaded library: JSON API under /api, an OPDS feed at /opds
// and the downloaded files under /files.
func Handler(br books.Reader, libraryDir string, rr *response.Responder) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/genres", func(w http.ResponseWriter, r *http.Request) {
		rows, err := br.Genres(r.Context())
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if rows == nil {
			rows = make([]string, 0)
		}

		rr.SendJson(w, r.Context(), struct {
			Titles []string `json:"titles"`
		}{Titles: rows})
	})

	r.Get("/api/books", func(w http.ResponseWriter, r *http.Request) {
		f, err := getFilter(r.URL.Query(), 20)
		if err != nil {
			rr.RespondBadRequest(w, r.Context(), err)
			return
		}

		rows, err := br.Search(r.Context(), f)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if rows == nil {
			rows = make([]*types.Book, 0)
		}

		rr.SendJson(w, r.Context(), struct {
			Books []*types.Book `json:"books"`
		}{Books: rows})
	})

	r.Get("/opds", func(w http.ResponseWriter, r *http.Request) {
		f, err := getFilter(r.URL.Query(), 0)
		if err != nil {
			rr.RespondBadRequest(w, r.Context(), err)
			return
		}

		rows, err := br.Search(r.Context(), f)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		rr.SendXml(w, r.Context(), linkTypeAcquisition,
			buildFeed("tululu library", r.URL.RequestURI(), rows))
	})

	files := http.StripPrefix("/files/", http.FileServer(http.Dir(libraryDir)))
	r.Get("/files/*", files.ServeHTTP)

	return r
}

func getFilter(q url.Values, defaultLimit int) (books.Filter, error) {
	limit, err := getIntOrDefault("limit", q, defaultLimit)
	if err != nil {
		return books.Filter{}, err
	}

	offset, err := getIntOrDefault("offset", q, 0)
	if err != nil {
		return books.Filter{}, err
	}

	return books.Filter{
		Query:  strings.TrimSpace(q.Get("search")),
		Genre:  strings.TrimSpace(q.Get("genre")),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func getIntOrDefault(key string, q url.Values, default_ int) (int, error) {
	ls := q.Get(key)
	if ls == "" {
		return default_, nil
	}

	v, err := strconv.Atoi(ls)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, ls)
	}

	return v, nil
}
