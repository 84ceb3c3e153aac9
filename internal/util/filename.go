package util

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var filenameStripper = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename turns a client supplied name into a safe base name: it folds
// accents to ASCII, drops path separators and anything outside [A-Za-z0-9_.-],
// joins whitespace with underscores and trims leading/trailing dots and
// underscores. The result may be empty.
func SecureFilename(name string) string {
	var sb strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r <= unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(sb.String())
	name = strings.Join(strings.Fields(name), "_")
	name = filenameStripper.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// FileExt returns the lowercased extension of name without the dot, or "" if
// the name has no dot at all.
func FileExt(name string) string {
	ext := path.Ext(strings.ReplaceAll(name, "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
