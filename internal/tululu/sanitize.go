package tululu

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameBytes = 255

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename turns a book title into a single valid path component on Linux,
// macOS and Windows. Separators are removed, so the result never leaves its directory.
func SanitizeFilename(name string) string {
	return sanitize(name, maxFilenameBytes)
}

// AssetName is the file name of a downloaded asset: the sanitized title followed by ext.
// The title is cut so that the whole name, extension included, fits in one path component.
func AssetName(title, ext string) string {
	return sanitize(title, maxFilenameBytes-len(ext)) + ext
}

func sanitize(name string, limit int) string {
	var sb strings.Builder
	for _, r := range name {
		if r == utf8.RuneError || unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			continue
		}

		sb.WriteRune(r)
	}

	s := strings.TrimRight(strings.TrimSpace(sb.String()), ". ")

	// Windows treats "CON.txt" as the device too, so the suffix goes right after the stem
	stem, rest, hasExt := strings.Cut(s, ".")
	if _, ok := reservedNames[strings.ToUpper(stem)]; ok {
		s = stem + "_"
		if hasExt {
			s += "." + rest
		}
	}

	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimRight(s[:cut], ". ")
	}

	if s == "" {
		return "_"
	}

	return s
}
