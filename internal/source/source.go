// Package source classifies books by the provenance encoded in their
// Kobo content ID prefix.
package source

import "strings"

// Source is the provenance classification of a book on the device.
type Source string

// Known content sources. Sideloaded books carry a file: prefix, Onleihe
// loans a library: prefix, and Kobo store purchases a book: prefix.
const (
	Calibre Source = "Calibre"
	Onleihe Source = "Onleihe"
	Store   Source = "Store"
	Unknown Source = "Unknown"
)

// The device only records reading statistics for sideloaded books in
// KEPUB format (content type 6) and for store purchases.
const kepubContentType = 6

// Classify maps a content ID and content type code to a provenance label
// and whether reading statistics are available for the book. Prefixes are
// checked in order and the first match wins; anything unmatched resolves
// to Unknown rather than an error.
func Classify(contentID string, contentType int) (Source, bool) {
	switch {
	case strings.HasPrefix(contentID, "file:"):
		return Calibre, contentType == kepubContentType
	case strings.HasPrefix(contentID, "library:"):
		return Onleihe, false
	case strings.HasPrefix(contentID, "book:"):
		return Store, true
	}
	return Unknown, false
}
