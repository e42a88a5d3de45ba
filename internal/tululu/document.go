package tululu

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed HTML page. Extraction code only depends on this interface,
// so any HTML backend can serve it.
type Document interface {
	// First returns the first element matching selector in document order.
	First(selector string) (Element, bool)
	// All returns every element matching selector in document order.
	All(selector string) []Element
}

type Element interface {
	Attr(name string) (string, bool)
	// Text is the visible text content of the element and its descendants.
	Text() string
}

func ParseDocument(body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return &goqueryDocument{doc: doc}, nil
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d *goqueryDocument) First(selector string) (Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}

	return goqueryElement{sel: sel}, true
}

func (d *goqueryDocument) All(selector string) []Element {
	sel := d.doc.Find(selector)

	ret := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		ret = append(ret, goqueryElement{sel: s})
	})

	return ret
}

type goqueryElement struct {
	sel *goquery.Selection
}

func (e goqueryElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e goqueryElement) Text() string {
	return e.sel.Text()
}
