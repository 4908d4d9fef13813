package sources

import (
	"net/url"
	"strings"
)

// Origin returns scheme://host of raw, or raw itself when it cannot be parsed.
func Origin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	return u.Scheme + "://" + u.Host
}

// AbsURL resolves href against origin. Absolute links are returned unchanged.
func AbsURL(origin, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		if strings.HasPrefix(href, "/") {
			return strings.TrimRight(origin, "/") + href
		}
		return href
	}

	return base.ResolveReference(ref).String()
}
