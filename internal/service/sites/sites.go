// internal/service/sites/sites.go
package sites

import (
	"net/url"
	"strings"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
)

// Matcher resolves a URL to a tracked site. A nil result means the URL is not
// tracked and the scheduler ignores it entirely.
type Matcher interface {
	Match(rawURL string) *entity.SiteMatch
}

// patternMatcher matches hostnames against a configured pattern list.
// Supported patterns: exact hostnames ("reddit.com", matches subdomains too)
// and explicit wildcards ("*.youtube.com"). Anything fancier belongs to the
// extension's own matching engine, not this backend.
type patternMatcher struct {
	patterns []string
}

func NewMatcher(patterns []string) Matcher {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &patternMatcher{patterns: cleaned}
}

func (m *patternMatcher) Match(rawURL string) *entity.SiteMatch {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}

	for _, pattern := range m.patterns {
		base := strings.TrimPrefix(pattern, "*.")
		if host == base || strings.HasSuffix(host, "."+base) {
			return &entity.SiteMatch{Domain: registrableDomain(host, base), Pattern: pattern}
		}
	}

	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// registrableDomain collapses subdomains onto the matched base so time for
// "www.youtube.com" and "m.youtube.com" lands in one ledger bucket.
func registrableDomain(host, base string) string {
	if host == base || strings.HasSuffix(host, "."+base) {
		return base
	}
	return host
}
