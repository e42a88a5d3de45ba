package tululu

import (
	"net/url"
	"strconv"
	"strings"

	"tululu/internal/types"
)

const (
	selectorHeading  = "#content h1"
	selectorCover    = ".bookimage a img"
	selectorGenres   = "span.d_book a"
	selectorComments = ".texts .black"
)

// AuthorAndTitle reads the page heading which has the form "Title :: Author".
// Segment 0 is the title, segment 1 is decorative and segment 2 is the author.
func AuthorAndTitle(doc Document) (title string, author string, err error) {
	h, ok := doc.First(selectorHeading)
	if !ok {
		return "", "", &ExtractionError{What: "title and author", Reason: "no heading " + selectorHeading}
	}

	parts := strings.Split(h.Text(), ":")
	if len(parts) < 3 {
		return "", "", &ExtractionError{
			What:   "title and author",
			Reason: "heading " + strconv.Quote(h.Text()) + " has " + strconv.Itoa(len(parts)) + " segments, 3 expected",
		}
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[2]), nil
}

// BookURL is the detail page of the book, {base}/b{id}/.
func BookURL(base *url.URL, id types.BookId) *url.URL {
	return base.ResolveReference(&url.URL{Path: "/b" + id.String() + "/"})
}

// CoverImageUrl resolves the cover against the book's own page since covers use
// book-relative paths. Returns nil and empty path when the page has no cover.
func CoverImageUrl(doc Document, base *url.URL, id types.BookId) (*url.URL, string, error) {
	img, ok := doc.First(selectorCover)
	if !ok {
		return nil, "", nil
	}

	src, _ := img.Attr("src")
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, "", nil
	}

	rel, err := url.Parse(src)
	if err != nil {
		return nil, "", &ExtractionError{What: "cover image", Reason: "invalid src " + strconv.Quote(src) + ": " + err.Error()}
	}

	return BookURL(base, id).ResolveReference(rel), rel.Path, nil
}

func Genres(doc Document) []string {
	return texts(doc.All(selectorGenres))
}

func Comments(doc Document) []string {
	return texts(doc.All(selectorComments))
}

func texts(els []Element) []string {
	ret := make([]string, 0, len(els))
	for _, el := range els {
		ret = append(ret, strings.TrimSpace(el.Text()))
	}

	return ret
}

// ExtractBook builds the whole record from a detail page, or fails without a record.
// The returned URL is the absolute cover address, nil when there is no cover.
func ExtractBook(doc Document, base *url.URL, id types.BookId) (*types.Book, *url.URL, error) {
	title, author, err := AuthorAndTitle(doc)
	if err != nil {
		return nil, nil, err
	}

	cover, imgSrc, err := CoverImageUrl(doc, base, id)
	if err != nil {
		return nil, nil, err
	}

	return &types.Book{
		Id:       id,
		Title:    title,
		Author:   author,
		ImgSrc:   imgSrc,
		Comments: Comments(doc),
		Genres:   Genres(doc),
	}, cover, nil
}
