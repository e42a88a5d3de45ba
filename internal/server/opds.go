package server

import (
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/opds-community/libopds2-go/opds1"

	"tululu/internal/tululu"
	"tululu/internal/types"
)

const (
	linkTypeAcquisition = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	linkRelAcquisition  = "http://opds-spec.org/acquisition"
	linkRelImage        = "http://opds-spec.org/image"
	linkRelSelf         = "self"

	feedId = "urn:tululu:library"
)

// atomFeed gives the feed its Atom root element, opds1.Feed itself carries no XMLName.
type atomFeed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	opds1.Feed
}

func buildFeed(title, self string, bks []*types.Book) atomFeed {
	feed := opds1.Feed{
		ID:    feedId,
		Title: title,
		Links: []opds1.Link{{Rel: linkRelSelf, Href: self, TypeLink: linkTypeAcquisition}},
	}

	for _, b := range bks {
		feed.Entries = append(feed.Entries, bookEntry(b))
	}

	return atomFeed{Feed: feed}
}

func bookEntry(b *types.Book) opds1.Entry {
	id := feedId + ":title:" + url.PathEscape(b.Title)
	if b.Id != 0 {
		id = feedId + ":book:" + b.Id.String()
	}

	var cats []opds1.Category
	for _, g := range b.Genres {
		cats = append(cats, opds1.Category{Term: g, Label: g})
	}

	links := []opds1.Link{{
		Rel:      linkRelAcquisition,
		Href:     "/files/" + url.PathEscape(tululu.AssetName(b.Title, ".txt")),
		TypeLink: "text/plain; charset=utf-8",
	}}
	if b.ImgSrc != "" {
		links = append(links, opds1.Link{
			Rel:      linkRelImage,
			Href:     "/files/" + url.PathEscape(tululu.AssetName(b.Title, ".jpg")),
			TypeLink: "image/jpeg",
		})
	}

	return opds1.Entry{
		ID:       id,
		Title:    b.Title,
		Author:   []opds1.Author{{Name: b.Author}},
		Category: cats,
		Links:    links,
		Content:  opds1.Content{Content: strings.Join(b.Comments, "\n\n")},
	}
}
