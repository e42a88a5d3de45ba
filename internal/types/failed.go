package types

type ItemKind string

const (
	ItemBook        ItemKind = "book"
	ItemCatalogPage ItemKind = "catalog_page"
)

// FailedItem describes the unit of work which failed: a single book or a whole catalog page.
//
// To create a FailedItem, use MakeFailedBook or MakeFailedPage.
type FailedItem struct {
	Kind ItemKind
	Id   uint64 // book id or page number
	Url  string
}

func MakeFailedBook(id BookId, url string) FailedItem {
	return FailedItem{Kind: ItemBook, Id: uint64(id), Url: url}
}

func MakeFailedPage(page uint64, url string) FailedItem {
	return FailedItem{Kind: ItemCatalogPage, Id: page, Url: url}
}
