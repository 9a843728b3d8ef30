package utils

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackContentType = "application/octet-stream"

// types a browser would render or execute when opened from the bucket's domain
var activeContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"image/svg+xml",
	"text/xml",
	"application/xml",
	"text/javascript",
	"application/javascript",
	"application/x-javascript",
}

// SafeContentType sniffs the stored type from the content itself, never from the client.
// Markup and script types are downgraded to application/octet-stream.
func SafeContentType(r io.Reader) (string, error) {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	for m := detected; m != nil; m = m.Parent() {
		for _, active := range activeContentTypes {
			if m.Is(active) {
				return fallbackContentType, nil
			}
		}
	}
	return detected.String(), nil
}
