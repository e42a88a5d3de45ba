package tululu

import (
	"net/url"
	"regexp"
	"strconv"

	"tululu/internal/types"
)

const selectorCatalogBook = ".bookimage a"

var regHrefBook = regexp.MustCompile(`^/b(\d+)/?$`)

// CatalogURL is a listing page of one genre, {base}/l{category}/{page}/.
func CatalogURL(base *url.URL, category uint64, page uint64) *url.URL {
	return base.ResolveReference(&url.URL{
		Path: "/l" + strconv.FormatUint(category, 10) + "/" + strconv.FormatUint(page, 10) + "/",
	})
}

// ExtractBookIds returns the ids of every book cover link on a listing page in document order.
func ExtractBookIds(doc Document) ([]types.BookId, error) {
	anchors := doc.All(selectorCatalogBook)

	ids := make([]types.BookId, 0, len(anchors))
	for _, a := range anchors {
		href, _ := a.Attr("href")

		u, err := url.Parse(href)
		if err != nil {
			return nil, &ExtractionError{What: "book id", Reason: "invalid href " + strconv.Quote(href)}
		}

		s := regHrefBook.FindStringSubmatch(u.Path)
		if len(s) == 0 {
			return nil, &ExtractionError{What: "book id", Reason: "no book path in href " + strconv.Quote(href)}
		}

		id, err := types.ParseBookId(s[1])
		if err != nil {
			return nil, &ExtractionError{What: "book id", Reason: err.Error()}
		}

		ids = append(ids, id)
	}

	return ids, nil
}
