package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	PlaceholderImage = "/placeholder-product.png"
	IPFSGateway      = "https://ipfs.io/ipfs/"
)

var imageMagic = []struct {
	header []byte
	mime   string
}{
	{[]byte{0x89, 0x50, 0x4e, 0x47}, "image/png"},
	{[]byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
	{[]byte{0xff, 0xd8, 0xff, 0xe1}, "image/jpeg"},
	{[]byte{0x47, 0x49, 0x46, 0x38}, "image/gif"},
	{[]byte{0x52, 0x49, 0x46, 0x46}, "image/webp"},
}

// BytesToImageURL turns the image field of a product into something an <img>
// tag can load. Raw image bytes become a data URL, stored URLs are passed
// through and anything else is treated as an IPFS content id.
func BytesToImageURL(b []byte) string {
	if len(b) == 0 {
		return PlaceholderImage
	}

	for _, m := range imageMagic {
		if bytes.HasPrefix(b, m.header) {
			return "data:" + m.mime + ";base64," + base64.StdEncoding.EncodeToString(b)
		}
	}

	if utf8.Valid(b) {
		text := strings.TrimSpace(string(b))
		switch {
		case strings.HasPrefix(text, "data:image/"):
			return text
		case strings.HasPrefix(text, "https://"), strings.HasPrefix(text, "http://"):
			return text
		case strings.HasPrefix(text, "ipfs://"):
			return IPFSGateway + strings.TrimPrefix(strings.TrimPrefix(text, "ipfs://"), "ipfs/")
		}
	}

	return IPFSGateway + hex.EncodeToString(b)
}
