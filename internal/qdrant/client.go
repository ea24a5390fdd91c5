// Package qdrant is a minimal REST client that stores one vector per site
// in a Qdrant collection.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pxtester/showcase/internal/domain"
)

const siteIDKey = "site_id"

// ErrInvalidDimension is returned by EnsureCollection for a non-positive size.
var ErrInvalidDimension = errors.New("invalid dimension")

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Index implements service.VectorIndex. Collections use cosine distance so
// scores are comparable with the pgvector backend.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection when it does not exist yet.
func (i *Index) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}

	status, err := i.do(ctx, http.MethodGet, i.collectionURL(), nil, nil)
	if err == nil {
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	_, err = i.do(ctx, http.MethodPut, i.collectionURL(), body, nil)
	return err
}

// Upsert stores the vector for siteID. Metadata is kept as point payload.
func (i *Index) Upsert(ctx context.Context, siteID string, embedding []float32, metadata map[string]string) error {
	payload := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload[siteIDKey] = siteID

	body := map[string]any{
		"points": []map[string]any{{
			"id":      siteID,
			"vector":  embedding,
			"payload": payload,
		}},
	}
	_, err := i.do(ctx, http.MethodPut, i.collectionURL()+"/points?wait=true", body, nil)
	return err
}

// Query returns up to topK matches, best first.
func (i *Index) Query(ctx context.Context, embedding []float32, topK int) ([]domain.VectorMatch, error) {
	if topK <= 0 {
		return []domain.VectorMatch{}, nil
	}

	req := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := i.do(ctx, http.MethodPost, i.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		meta := make(map[string]string, len(r.Payload))
		for k, v := range r.Payload {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
		id := meta[siteIDKey]
		if id == "" {
			id = fmt.Sprint(r.ID)
		}
		delete(meta, siteIDKey)
		matches = append(matches, domain.VectorMatch{ID: id, Score: r.Score, Metadata: meta})
	}
	return matches, nil
}

// Delete removes the vector for siteID. Unknown ids are ignored by Qdrant.
func (i *Index) Delete(ctx context.Context, siteID string) error {
	body := map[string]any{"points": []string{siteID}}
	_, err := i.do(ctx, http.MethodPost, i.collectionURL()+"/points/delete?wait=true", body, nil)
	return err
}

func (i *Index) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", i.url, i.collection)
}

// do sends body as JSON and decodes the response into out when non-nil.
// The returned status is zero when no response was received.
func (i *Index) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if i.apiKey != "" {
		req.Header.Set("api-key", i.apiKey)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}
