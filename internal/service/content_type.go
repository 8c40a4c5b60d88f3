package service

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType sniffs the MIME type from the bytes themselves; the file
// name plays no part. Parameters such as charset are dropped so that records
// can be filtered by bare type.
func DetectContentType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
