// Package catalog derives stable product identities from raw catalog URLs.
package catalog

import (
	"net/url"
	"regexp"
)

// Product pages carry a 10-character catalog identifier after either the
// direct marker /dp/ or the grouped marker /gp/product/. Everything else in
// the URL is promotional or tracking noise.
var identifierPattern = regexp.MustCompile(`/(dp|gp/product)/(\w{10})`)

// Canonicalize reduces a raw product URL to its canonical identity:
// scheme://host/dp/IDENTIFIER with query string and fragment stripped. Both
// path markers normalize to /dp/ so one catalog item has exactly one identity.
//
// Canonicalize is total and idempotent. Inputs that do not look like catalog
// product pages (no identifier, unparseable URL) are returned unchanged:
// not every tracked URL is a catalog page, so a miss is a no-op, not a failure.
func Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	m := identifierPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return raw
	}

	clean := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   "/dp/" + m[2],
	}
	return clean.String()
}
