// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/embeddings"
	"github.com/minuteshq/minutes/pkg/vector"
)

// Driver implements vector.Driver using Chroma's REST API, one collection
// per user namespace. Embeddings are produced by the configured embedder;
// Chroma reports distances where lower means more similar, which matches
// the vector.Result convention directly.
type Driver struct {
	baseURL    string
	embedder   embeddings.Embedder
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	collections map[string]string // namespace -> collection id
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string
}

// NewDriver creates a new Chroma vector driver.
func NewDriver(c Config, embedder embeddings.Embedder, logger *zap.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	return &Driver{
		baseURL:  c.URL,
		embedder: embedder,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:      logger,
		collections: make(map[string]string),
	}, nil
}

func (d *Driver) collectionsURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/default_tenant/databases/default_database/collections", d.baseURL)
}

// getCollectionID resolves a namespace to its collection id, returning
// ok=false when the collection does not exist.
func (d *Driver) getCollectionID(ctx context.Context, namespace string) (string, bool, error) {
	d.mu.Lock()
	if id, ok := d.collections[namespace]; ok {
		d.mu.Unlock()
		return id, true, nil
	}
	d.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, "GET", d.collectionsURL()+"/"+namespace, nil)
	if err != nil {
		return "", false, fmt.Errorf("%w: creating get request: %v", vector.ErrStore, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("%w: sending get request: %v", vector.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", false, fmt.Errorf("%w: get collection status %d: %s", vector.ErrStore, resp.StatusCode, string(body))
	}

	var collection chromaCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return "", false, fmt.Errorf("%w: decoding collection response: %v", vector.ErrStore, err)
	}

	d.mu.Lock()
	d.collections[namespace] = collection.ID
	d.mu.Unlock()

	return collection.ID, true, nil
}

// EnsureNamespace creates the user's collection if absent. Idempotent.
func (d *Driver) EnsureNamespace(ctx context.Context, userID int64) error {
	namespace := vector.Namespace(userID)

	if _, ok, err := d.getCollectionID(ctx, namespace); err != nil {
		return err
	} else if ok {
		return nil
	}

	createBody := map[string]any{
		"name":          namespace,
		"get_or_create": true,
	}
	jsonBody, err := json.Marshal(createBody)
	if err != nil {
		return fmt.Errorf("%w: marshaling create request: %v", vector.ErrStore, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.collectionsURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: creating create request: %v", vector.ErrStore, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending create request: %v", vector.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: create collection status %d: %s", vector.ErrStore, resp.StatusCode, string(body))
	}

	var collection chromaCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return fmt.Errorf("%w: decoding create response: %v", vector.ErrStore, err)
	}

	d.mu.Lock()
	d.collections[namespace] = collection.ID
	d.mu.Unlock()

	d.logger.Info("created vector namespace",
		zap.String("namespace", namespace),
		zap.String("collection_id", collection.ID),
	)

	return nil
}

// Upsert writes chunk records into the user's collection, creating it if
// needed. Idempotent on ChunkID.
func (d *Driver) Upsert(ctx context.Context, userID int64, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := d.EnsureNamespace(ctx, userID); err != nil {
		return err
	}

	namespace := vector.Namespace(userID)
	collectionID, _, err := d.getCollectionID(ctx, namespace)
	if err != nil {
		return err
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}

	embedded, err := d.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}

	ids := make([]string, len(records))
	metadatas := make([]map[string]any, len(records))
	for i, rec := range records {
		ids[i] = rec.ChunkID
		metadatas[i] = recordMetadata(rec)
	}

	reqBody := chromaUpsertRequest{
		IDs:        ids,
		Embeddings: embedded,
		Documents:  texts,
		Metadatas:  metadatas,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: marshaling upsert request: %v", vector.ErrStore, err)
	}

	url := fmt.Sprintf("%s/%s/upsert", d.collectionsURL(), collectionID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: creating upsert request: %v", vector.ErrStore, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending upsert request: %v", vector.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: upsert status %d: %s", vector.ErrStore, resp.StatusCode, string(body))
	}

	d.logger.Debug("upserted chunks",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)),
	)

	return nil
}

// Query returns up to topK nearest neighbors for the query text. A
// missing namespace yields an empty result, not an error.
func (d *Driver) Query(ctx context.Context, userID int64, queryText string, topK int, filter *vector.Filter) ([]vector.Result, error) {
	if topK <= 0 {
		topK = 10
	}

	namespace := vector.Namespace(userID)
	collectionID, ok, err := d.getCollectionID(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	queryEmbedding, err := d.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{queryEmbedding},
		NResults:        topK,
		Where:           whereClause(filter),
		Include:         []string{"documents", "metadatas", "distances"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling query request: %v", vector.ErrStore, err)
	}

	url := fmt.Sprintf("%s/%s/query", d.collectionsURL(), collectionID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating query request: %v", vector.ErrStore, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending query request: %v", vector.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: query status %d: %s", vector.ErrStore, resp.StatusCode, string(body))
	}

	var queryResp chromaQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("%w: decoding query response: %v", vector.ErrStore, err)
	}

	// Only the first group exists; we query with a single embedding.
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return nil, nil
	}

	var documents []string
	if len(queryResp.Documents) > 0 {
		documents = queryResp.Documents[0]
	}
	var metadatas []map[string]any
	if len(queryResp.Metadatas) > 0 {
		metadatas = queryResp.Metadatas[0]
	}
	var distances []float32
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}

	results := make([]vector.Result, 0, len(queryResp.IDs[0]))
	for i := range queryResp.IDs[0] {
		result := vector.Result{}
		if i < len(documents) {
			result.Text = documents[i]
		}
		if i < len(metadatas) {
			result.Metadata = stringMetadata(metadatas[i])
		}
		if i < len(distances) {
			result.Distance = distances[i]
		}
		results = append(results, result)
	}

	d.logger.Debug("queried vector namespace",
		zap.String("namespace", namespace),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// DeleteNamespace removes the user's collection. Missing collections are
// not an error.
func (d *Driver) DeleteNamespace(ctx context.Context, userID int64) error {
	namespace := vector.Namespace(userID)

	req, err := http.NewRequestWithContext(ctx, "DELETE", d.collectionsURL()+"/"+namespace, nil)
	if err != nil {
		return fmt.Errorf("%w: creating delete request: %v", vector.ErrStore, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending delete request: %v", vector.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: delete collection status %d: %s", vector.ErrStore, resp.StatusCode, string(body))
	}

	d.mu.Lock()
	delete(d.collections, namespace)
	d.mu.Unlock()

	d.logger.Info("deleted vector namespace", zap.String("namespace", namespace))

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// recordMetadata converts record metadata for storage, adding a numeric
// meeting timestamp so date lower bounds can use $gte.
func recordMetadata(rec vector.Record) map[string]any {
	meta := make(map[string]any, len(rec.Metadata)+1)
	for k, v := range rec.Metadata {
		meta[k] = v
	}
	if date, ok := rec.Metadata[vector.MetaMeetingDate]; ok {
		if ts, ok := vector.MeetingTimestamp(date); ok {
			meta["meeting_ts"] = ts
		}
	}
	return meta
}

// whereClause builds the Chroma metadata filter for a query.
func whereClause(filter *vector.Filter) map[string]any {
	if filter == nil {
		return nil
	}

	var conds []map[string]any
	if len(filter.ProjectsNorm) > 0 {
		conds = append(conds, map[string]any{
			vector.MetaPrimaryNorm: map[string]any{"$in": filter.ProjectsNorm},
		})
	}
	if filter.DateFrom != "" {
		if ts, ok := vector.MeetingTimestamp(filter.DateFrom); ok {
			conds = append(conds, map[string]any{
				"meeting_ts": map[string]any{"$gte": ts},
			})
		}
	}

	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return map[string]any{"$and": conds}
	}
}

// stringMetadata flattens API metadata values back to strings.
func stringMetadata(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = fmt.Sprintf("%g", val)
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		}
	}
	return out
}

var _ vector.Driver = (*Driver)(nil)
