// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// --- metadata boundary ---

func TestMetaFromMap(t *testing.T) {
	meta, err := metaFromMap(map[string]any{
		"kind":          "institution",
		"institution":   "State University",
		"domain":        "residency",
		"source_url":    "https://admissions.stateu.edu/residency",
		"last_verified": "2026-01-10",
		"title":         "Residency requirements",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RecordInstitution, meta.Kind)
	assert.Equal(t, types.DomainResidency, meta.Domain)
	assert.Equal(t, 2026, meta.LastVerified.Year())
}

func TestMetaFromMapRejectsUnknownKind(t *testing.T) {
	_, err := metaFromMap(map[string]any{
		"kind":       "blog_post",
		"source_url": "https://example.org",
	})
	assert.Error(t, err)
}

func TestMetaFromMapRejectsMissingSource(t *testing.T) {
	_, err := metaFromMap(map[string]any{"kind": "policy"})
	assert.Error(t, err)
}

// --- HTTP backend ---

const sampleQueryJSON = `{
  "documents": [["Tuition for residents is $11,000 per year.", "Out-of-state tuition is $38,000."]],
  "metadatas": [[
    {"kind": "policy", "source_url": "https://registrar.stateu.edu/tuition", "last_verified": "2026-01-05", "title": "Tuition schedule"},
    {"kind": "policy", "source_url": "https://registrar.stateu.edu/tuition", "title": "Nonresident tuition"}
  ]],
  "distances": [[0.21, 0.48]]
}`

func TestHTTPStoreQuery(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleQueryJSON)
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{Backend: types.StoreHTTP, BaseURL: ts.URL}, nil)
	resp, err := s.Query(context.Background(), "policies", "resident tuition", 5, nil)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/collections/policies/query", gotPath)
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, types.RecordPolicy, resp.Metadatas[0].Kind)
	assert.InDelta(t, 0.21, resp.Distances[0], 1e-9)
}

func TestHTTPStoreQuerySkipsInvalidMetadata(t *testing.T) {
	body := `{
	  "documents": [["good", "bad"]],
	  "metadatas": [[
	    {"kind": "policy", "source_url": "https://x.gov/a"},
	    {"kind": "mystery", "source_url": "https://x.gov/b"}
	  ]],
	  "distances": [[0.1, 0.2]]
	}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL}, nil)
	resp, err := s.Query(context.Background(), "policies", "q", 5, nil)
	require.NoError(t, err)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "good", resp.Documents[0])
}

func TestHTTPStoreMissingCollection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL}, nil)
	_, err := s.Query(context.Background(), "ghost", "q", 5, nil)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

// --- SQLite backend ---

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addRecord(t *testing.T, s *SQLiteStore, collection, text string, meta types.RecordMeta) {
	t.Helper()
	require.NoError(t, s.Add(context.Background(), SeedRecord{
		Collection: collection, Text: text, Meta: meta,
	}))
}

func TestSQLiteStoreQueryAndFilter(t *testing.T) {
	s := newTestSQLite(t)
	addRecord(t, s, "programs", "The accelerated BS/MD program admits twenty students per year.",
		types.RecordMeta{Kind: types.RecordBSMDProgram, Institution: "Union College", Domain: types.DomainBSMD, SourceURL: "https://union.edu/bsmd"})
	addRecord(t, s, "programs", "The nursing program requires a separate application.",
		types.RecordMeta{Kind: types.RecordProgram, Institution: "Union College", SourceURL: "https://union.edu/nursing"})

	resp, err := s.Query(context.Background(), "programs", "BS/MD program", 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Documents)
	assert.Contains(t, resp.Documents[0], "BS/MD")

	resp, err = s.Query(context.Background(), "programs", "program", 10,
		map[string]string{"kind": string(types.RecordBSMDProgram)})
	require.NoError(t, err)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, types.RecordBSMDProgram, resp.Metadatas[0].Kind)
}

func TestSQLiteStoreMissingCollection(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.Query(context.Background(), "ghost", "anything", 5, nil)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestSQLiteStoreDeterministicOrder(t *testing.T) {
	s := newTestSQLite(t)
	for i := 0; i < 5; i++ {
		addRecord(t, s, "policies", "Financial aid deadlines apply to all applicants.",
			types.RecordMeta{Kind: types.RecordPolicy, SourceURL: fmt.Sprintf("https://x.gov/p%d", i)})
	}

	first, err := s.Query(context.Background(), "policies", "financial aid deadlines", 5, nil)
	require.NoError(t, err)
	second, err := s.Query(context.Background(), "policies", "financial aid deadlines", 5, nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Documents), len(second.Documents))
	for i := range first.Metadatas {
		assert.Equal(t, first.Metadatas[i].SourceURL, second.Metadatas[i].SourceURL)
	}
}

func TestSQLiteStoreSeedFromFile(t *testing.T) {
	seed := `
- collection: institutions
  text: State University enrolls 30,000 undergraduates.
  meta:
    kind: institution
    institution: State University
    source_url: https://stateu.edu/about
- collection: policies
  text: The FAFSA priority deadline is March 1.
  meta:
    kind: aid_policy
    domain: aid_mechanics
    source_url: https://studentaid.gov/fafsa
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	s := newTestSQLite(t)
	n, err := s.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second seed call is a no-op on a populated index.
	n, err = s.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	resp, err := s.Query(context.Background(), "policies", "FAFSA deadline", 5, nil)
	require.NoError(t, err)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, types.DomainAidMechanics, resp.Metadatas[0].Domain)
}

func TestFTSMatchExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"resident tuition", `"resident" OR "tuition"`},
		{"BS/MD program?", `"bs" OR "md" OR "program"`},
		{"a I", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ftsMatchExpr(tt.input); got != tt.want {
				t.Errorf("ftsMatchExpr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
