package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Generate creates a QR code PNG image for the given URL.
func Generate(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qr.Encode(link, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// JoinURL is the link players follow to take a seat at a table.
func JoinURL(baseURL, tableID string) string {
	return fmt.Sprintf("%s/tables/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(tableID))
}

// JoinLink renders the join link for a table as a PNG.
func JoinLink(baseURL, tableID string, size int) ([]byte, error) {
	return Generate(JoinURL(baseURL, tableID), size)
}
