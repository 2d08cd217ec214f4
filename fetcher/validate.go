package fetcher

import (
	"net/url"
	"strings"

	"github.com/use-agent/linkpreview/models"
)

// ValidateURL parses raw as an absolute http(s) URL.
//
// The scheme check is a security boundary: file:, javascript:, data: and
// friends never reach the network layer.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, models.NewPreviewError(models.ErrCodeInvalidURL, models.MsgURLRequired, nil)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, models.NewPreviewError(models.ErrCodeInvalidURL, models.MsgInvalidURL, err)
	}
	if !isHTTPScheme(u.Scheme) {
		return nil, models.NewPreviewError(models.ErrCodeUnsupportedScheme, models.MsgUnsupportedScheme, nil)
	}
	if u.Host == "" {
		return nil, models.NewPreviewError(models.ErrCodeInvalidURL, models.MsgInvalidURL, nil)
	}
	return u, nil
}

// NormalizeInput turns what a person typed into something ValidateURL will
// accept: surrounding space is dropped and a bare host gets https://.
// Input that already names a scheme is left for ValidateURL to judge.
func NormalizeInput(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.Contains(s, "://") {
		return s
	}
	return "https://" + s
}

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
