// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"net/url"
	"strings"
	"time"
)

// Authority score multipliers. Per prd002-retrieval R3.1-R3.3.
const (
	// AuthorityDefault is the score for any citation without a recognized
	// authoritative domain.
	AuthorityDefault = 1.0

	// AuthorityBoosted is the score for citations whose URL belongs to a
	// government, accredited-institution, or designated partner domain.
	AuthorityBoosted = 1.5
)

// Citation links a statement in an answer to the official source backing it.
// Citations are immutable once created: components pass them by value and
// never modify fields after construction. Per prd002-retrieval R3.
type Citation struct {
	// URL of the source document.
	URL string `json:"url" yaml:"url"`

	// LastVerified is the date the source content was last checked against
	// the live page.
	LastVerified time.Time `json:"last_verified" yaml:"last_verified"`

	// EffectiveStart bounds the start of the policy validity window, when
	// the source states one.
	EffectiveStart *time.Time `json:"effective_start,omitempty" yaml:"effective_start,omitempty"`

	// EffectiveEnd bounds the end of the policy validity window.
	EffectiveEnd *time.Time `json:"effective_end,omitempty" yaml:"effective_end,omitempty"`

	// AuthorityScore is the ranking multiplier applied to retrieval scores:
	// 1.5 for authoritative domains, 1.0 otherwise. Per R3.1.
	AuthorityScore float64 `json:"authority_score" yaml:"authority_score"`
}

// NewCitation builds a Citation for the given URL, boosting the authority
// score when the URL's host matches one of the authoritative domains
// (exact match or subdomain). Per prd002-retrieval R3.2.
func NewCitation(rawURL string, lastVerified time.Time, authoritativeDomains []string) Citation {
	return Citation{
		URL:            rawURL,
		LastVerified:   lastVerified,
		AuthorityScore: authorityFor(rawURL, authoritativeDomains),
	}
}

// authorityFor returns the authority multiplier for a URL.
func authorityFor(rawURL string, domains []string) float64 {
	host := hostOf(rawURL)
	if host == "" {
		return AuthorityDefault
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return AuthorityBoosted
		}
	}
	return AuthorityDefault
}

// hostOf extracts the lowercased hostname from a URL, tolerating bare
// "example.org/path" forms without a scheme.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		// No scheme: take everything up to the first slash.
		trimmed := rawURL
		if i := strings.IndexByte(trimmed, '/'); i >= 0 {
			trimmed = trimmed[:i]
		}
		host = trimmed
	}
	return strings.ToLower(host)
}
