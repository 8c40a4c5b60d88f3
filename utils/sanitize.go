package utils

import (
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// SanitizeHeaderFilename removes characters that can break headers.
func SanitizeHeaderFilename(name string) string {
	clean := strings.TrimSpace(name)
	clean = strings.Map(func(r rune) rune {
		switch {
		case r == '"', r == '\\', r < 0x20, r == 0x7f:
			return -1
		}
		return r
	}, clean)
	if clean == "" {
		return "download"
	}
	return clean
}

// ContentDisposition builds an attachment header value. Non-ASCII names get
// an RFC 5987 filename* parameter next to an ASCII fallback.
func ContentDisposition(name string) string {
	clean := SanitizeHeaderFilename(name)
	if isASCII(clean) {
		return fmt.Sprintf(`attachment; filename="%s"`, clean)
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": clean}); v != "" {
		return v
	}
	return fmt.Sprintf(`attachment; filename="download"; filename*=UTF-8''%s`, url.PathEscape(clean))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
