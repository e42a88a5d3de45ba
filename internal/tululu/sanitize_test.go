package tululu

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"separators", "A:B/C", "ABC"},
		{"plain", "Дубровский", "Дубровский"},
		{"traversal", "../../etc/passwd", "....etcpasswd"},
		{"dots only", "..", "_"},
		{"empty", "", "_"},
		{"reserved characters", `Who? "Me" <you> *all*`, "Who Me you all"},
		{"control characters", "line\nbreak\ttab", "linebreaktab"},
		{"trailing dot", "The End. ", "The End"},
		{"reserved device", "con", "con_"},
		{"reserved device with extension", "NUL.txt", "NUL_.txt"},
		{"reserved prefix is fine", "CONSOLE", "CONSOLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("я", 200))

	assert.LessOrEqual(t, len(got), maxFilenameBytes)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 127, utf8.RuneCountInString(got))
}

func TestAssetNameFitsWithExtension(t *testing.T) {
	for _, title := range []string{strings.Repeat("Ж", 130), strings.Repeat("a", 300), strings.Repeat("ё", 126) + "x"} {
		for _, ext := range []string{".txt", ".jpg"} {
			got := AssetName(title, ext)

			assert.LessOrEqual(t, len(got), maxFilenameBytes, got)
			assert.True(t, utf8.ValidString(got), got)
			assert.True(t, strings.HasSuffix(got, ext), got)
			assert.LessOrEqual(t, len(filepath.Base(TextPath("books", title))), maxFilenameBytes)
		}
	}

	assert.Equal(t, "Дубровский.txt", AssetName("Дубровский", ".txt"))
	assert.Equal(t, "CON_.jpg", AssetName("CON", ".jpg"))
}

func TestSanitizedPathStaysInFolder(t *testing.T) {
	for _, title := range []string{"../x", "..\\..\\x", "/abs/path", "a/../../b"} {
		p := TextPath("books", title)
		assert.Equal(t, "books", filepath.Dir(p), title)
	}
}
