package normalize

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Domain reduces a URL, host name or host:port to its registrable domain
// (eTLD+1), lowercased. It returns "" for empty input, IP addresses and
// values without a dot.
func Domain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || IsExpression(raw) {
		return ""
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	if u, err := url.Parse(candidate); err == nil && u.Host != "" {
		candidate = u.Hostname()
	} else {
		candidate = raw
		if _, rest, ok := strings.Cut(candidate, "://"); ok {
			candidate = rest
		}
		if i := strings.Index(candidate, "/"); i >= 0 {
			candidate = candidate[:i]
		}
	}
	candidate = strings.TrimSpace(candidate)
	candidate = strings.TrimPrefix(candidate, "*.")
	candidate = strings.Trim(candidate, ".")
	candidate = strings.TrimPrefix(strings.ToLower(candidate), "tcp:")
	if i := strings.IndexAny(candidate, ",:"); i >= 0 {
		candidate = candidate[:i]
	}
	if ip := net.ParseIP(candidate); ip != nil {
		return ""
	}
	if !strings.Contains(candidate, ".") {
		return ""
	}
	if after, ok := strings.CutPrefix(candidate, "www."); ok {
		candidate = after
	}
	eTLD, err := publicsuffix.EffectiveTLDPlusOne(candidate)
	if err != nil {
		return candidate
	}
	return strings.ToLower(strings.TrimSpace(eTLD))
}
