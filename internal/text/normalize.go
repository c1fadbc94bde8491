// Package text holds the pure string primitives shared by the quality filter,
// the keyword extractor and the deduplicator: whitespace/case folding, URL
// canonicalization, tokenizing and similarity ratios. Everything here is
// deterministic and allocation-light; no I/O.
package text

import (
	"net/url"
	"sort"
	"strings"
)

// CollapseWhitespace trims the string and collapses internal whitespace runs
// to single spaces. Length checks run on this form.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold lower-cases and collapses whitespace. Similarity comparisons and stub
// matching run on folded strings.
func Fold(s string) string {
	return strings.ToLower(CollapseWhitespace(s))
}

// trackingParams are query parameters that vary per share link without
// changing the target content.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"ref":     true,
	"ref_src": true,
	"source":  true,
}

func isTrackingParam(name string) bool {
	return trackingParams[name] || strings.HasPrefix(name, "utm_")
}

// NormalizeURL canonicalizes a URL for exact duplicate matching: scheme and
// fragment dropped, host lower-cased, tracking query parameters stripped,
// remaining parameters sorted, trailing slash trimmed. Unparseable input
// falls back to folded trimming so the result is still a usable map key.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	kept := make([]string, 0, len(q))
	for name := range q {
		if isTrackingParam(strings.ToLower(name)) {
			continue
		}
		kept = append(kept, name)
	}
	if len(kept) == 0 {
		return host + path
	}

	sort.Strings(kept)
	var b strings.Builder
	b.WriteString(host)
	b.WriteString(path)
	sep := "?"
	for _, name := range kept {
		vals := q[name]
		sort.Strings(vals)
		for _, v := range vals {
			b.WriteString(sep)
			b.WriteString(name)
			b.WriteString("=")
			b.WriteString(v)
			sep = "&"
		}
	}
	return b.String()
}

// ValidURL reports whether a URL is structurally sound: parseable with an
// http(s) scheme and a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
