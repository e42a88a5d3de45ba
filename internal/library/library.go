package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tululu/internal/types"
)

const FileName = "books_info.json"

// Encode renders books as one indented JSON array, keeping non-ASCII text readable.
func Encode(books []*types.Book) ([]byte, error) {
	if books == nil {
		books = make([]*types.Book, 0)
	}

	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(books); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteJSON replaces the file at path with the whole aggregate.
func WriteJSON(path string, books []*types.Book) error {
	bs, err := Encode(books)
	if err != nil {
		return fmt.Errorf("encoding books: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating folder for %s: %w", path, err)
	}

	if err := os.WriteFile(path, bs, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func ReadJSON(path string) ([]*types.Book, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var books []*types.Book
	if err := json.Unmarshal(bs, &books); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return books, nil
}
