package utils

import (
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxFileNameLength = 255

var (
	stripTags       = bluemonday.StrictPolicy()
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// SanitizeFileName strips path components, markup and unsafe characters from a client supplied
// filename. The result is never empty, never starts with a dot and fits in 255 bytes.
func SanitizeFileName(name string) string {
	name = html.UnescapeString(stripTags.Sanitize(name))
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if len(name) > maxFileNameLength {
		ext := path.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:maxFileNameLength-len(ext)] + ext
	}
	if name == "" {
		return "file"
	}
	return name
}
