package extractor

import (
	"net/url"
	"strings"
)

// ResolveURL makes ref absolute against the page URL base.
//
//   - "" stays "".
//   - http:// and https:// values are returned unchanged.
//   - protocol-relative //host/path values get https:.
//   - anything else is resolved as a relative reference; if either side
//     fails to parse the raw ref is returned rather than dropped.
func ResolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ref
	}
	// url.Parse rejects invalid percent-escapes such as /img%zz.png that
	// browsers (WHATWG URL) pass through and resolve; those refs come back raw.
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// siteNameFromURL derives a display name from the page URL: the lower-cased
// hostname without a leading "www.". An unparsable URL is returned as-is.
func siteNameFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return pageURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
