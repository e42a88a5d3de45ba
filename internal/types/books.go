package types

import "strconv"

// BookId identifies a book on the site, it is the number in /b{id}/ and txt.php?id={id}.
type BookId uint64

func (id BookId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func ParseBookId(s string) (BookId, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}

	return BookId(v), nil
}

type Book struct {
	Id       BookId   `json:"-"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	ImgSrc   string   `json:"img_src"` // site-relative path of the cover, not a local file
	Comments []string `json:"comments"`
	Genres   []string `json:"genres"`
}

type DownloadTarget struct {
	RemoteURL string
	LocalPath string
}
