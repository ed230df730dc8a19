// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/internal/httputil"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

const defaultHTTPTimeout = 8 * time.Second

// HTTPStore queries a remote vector store over its REST API.
// Per prd001-store R3.
type HTTPStore struct {
	cfg    types.StoreConfig
	client *http.Client
	log    *zap.Logger
}

// NewHTTPStore builds a client for the remote store. A nil logger disables
// diagnostics.
func NewHTTPStore(cfg types.StoreConfig, log *zap.Logger) *HTTPStore {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPStore{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// queryRequest is the store's query body: one query text, a result cap,
// and an optional metadata equality filter.
type queryRequest struct {
	QueryTexts []string          `json:"query_texts"`
	NResults   int               `json:"n_results"`
	Where      map[string]string `json:"where,omitempty"`
}

// queryResponse mirrors the store's nested response: one inner slice per
// query text.
type queryResponse struct {
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Query implements Querier against the remote store. Records whose
// metadata fails validation are skipped with a warning rather than failing
// the whole response. Per R2.2, R3.1-R3.3.
func (s *HTTPStore) Query(ctx context.Context, collection, queryText string, nResults int, filter map[string]string) (QueryResponse, error) {
	body, err := json.Marshal(queryRequest{
		QueryTexts: []string{queryText},
		NResults:   nResults,
		Where:      filter,
	})
	if err != nil {
		return QueryResponse{}, fmt.Errorf("encoding query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/collections/%s/query",
		s.cfg.BaseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return QueryResponse{}, fmt.Errorf("building query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("querying store: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return QueryResponse{}, fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return QueryResponse{}, fmt.Errorf("store returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return QueryResponse{}, fmt.Errorf("decoding store response: %w", err)
	}
	if len(parsed.Documents) == 0 {
		return QueryResponse{}, nil
	}

	docs := parsed.Documents[0]
	var metas []map[string]any
	if len(parsed.Metadatas) > 0 {
		metas = parsed.Metadatas[0]
	}
	var dists []float64
	if len(parsed.Distances) > 0 {
		dists = parsed.Distances[0]
	}

	out := QueryResponse{}
	for i, doc := range docs {
		if i >= len(metas) || i >= len(dists) {
			break
		}
		meta, err := metaFromMap(metas[i])
		if err != nil {
			s.log.Warn("skipping record with invalid metadata",
				zap.String("collection", collection), zap.Error(err))
			continue
		}
		out.Documents = append(out.Documents, doc)
		out.Metadatas = append(out.Metadatas, meta)
		out.Distances = append(out.Distances, dists[i])
	}
	return out, nil
}
