// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

var testDomains = []string{"studentaid.gov", "ed.gov", "stateu.edu"}

func TestNewCitationAuthority(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want float64
	}{
		{"federal aid site", "https://studentaid.gov/aid-estimator/", AuthorityBoosted},
		{"subdomain of authoritative", "https://fafsa.studentaid.gov/apply", AuthorityBoosted},
		{"department site", "https://www.ed.gov/policy", AuthorityBoosted},
		{"institution site", "https://stateu.edu/admissions", AuthorityBoosted},
		{"commercial site", "https://collegerankings.com/top-schools", AuthorityDefault},
		{"suffix but not subdomain", "https://fakestudentaid.gov.example.com/", AuthorityDefault},
		{"bare host no scheme", "studentaid.gov/aid-estimator", AuthorityBoosted},
		{"empty url", "", AuthorityDefault},
	}

	verified := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cit := NewCitation(tc.url, verified, testDomains)
			if cit.AuthorityScore != tc.want {
				t.Errorf("AuthorityScore = %v, want %v", cit.AuthorityScore, tc.want)
			}
			if cit.URL != tc.url {
				t.Errorf("URL = %q, want %q", cit.URL, tc.url)
			}
			if !cit.LastVerified.Equal(verified) {
				t.Errorf("LastVerified = %v, want %v", cit.LastVerified, verified)
			}
		})
	}
}

func TestNewCitationNoDomainsConfigured(t *testing.T) {
	cit := NewCitation("https://studentaid.gov/", time.Now(), nil)
	if cit.AuthorityScore != AuthorityDefault {
		t.Errorf("AuthorityScore = %v, want default with no configured domains", cit.AuthorityScore)
	}
}

func TestHostOf(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://StudentAid.gov/Path", "studentaid.gov"},
		{"http://www.ed.gov", "www.ed.gov"},
		{"stateu.edu/cost-of-attendance", "stateu.edu"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := hostOf(tc.url); got != tc.want {
			t.Errorf("hostOf(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
