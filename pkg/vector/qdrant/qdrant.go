// Package qdrant provides a Qdrant vector database driver implementation
// using the official gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/embeddings"
	"github.com/minuteshq/minutes/pkg/vector"
)

// DefaultDimensions matches the default embedding model output size.
const DefaultDimensions = 768

// Driver implements vector.Driver on Qdrant, one collection per user
// namespace. Qdrant reports cosine similarity (higher is better); the
// driver converts to the vector.Result distance convention (lower is
// more similar) as 1 - score.
type Driver struct {
	client     *qdrant.Client
	embedder   embeddings.Embedder
	dimensions uint64
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the gRPC address, e.g. "localhost:6334".
	Target string

	// Dimensions is the embedding vector size used when creating
	// collections. Defaults to DefaultDimensions.
	Dimensions uint
}

// NewDriver creates a new Qdrant vector driver.
func NewDriver(c Config, embedder embeddings.Embedder, logger *zap.Logger) (*Driver, error) {
	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrStore, err)
	}

	dimensions := uint64(c.Dimensions)
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	return &Driver{
		client:     client,
		embedder:   embedder,
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// EnsureNamespace creates the user's collection if absent. Idempotent.
func (d *Driver) EnsureNamespace(ctx context.Context, userID int64) error {
	namespace := vector.Namespace(userID)

	exists, err := d.client.CollectionExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("%w: checking collection: %v", vector.ErrStore, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: namespace,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     d.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %v", vector.ErrStore, err)
	}

	d.logger.Info("created vector namespace", zap.String("namespace", namespace))

	return nil
}

// Upsert writes chunk records into the user's collection. Point ids are
// derived deterministically from chunk ids so re-upserts overwrite.
func (d *Driver) Upsert(ctx context.Context, userID int64, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := d.EnsureNamespace(ctx, userID); err != nil {
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

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(rec.ChunkID)),
			Vectors: qdrant.NewVectors(embedded[i]...),
			Payload: qdrant.NewValueMap(payload(rec)),
		}
	}

	namespace := vector.Namespace(userID)
	_, err = d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: namespace,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upserting points: %v", vector.ErrStore, err)
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

	exists, err := d.client.CollectionExists(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: checking collection: %v", vector.ErrStore, err)
	}
	if !exists {
		return nil, nil
	}

	queryEmbedding, err := d.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: namespace,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		Filter:         queryFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %v", vector.ErrStore, err)
	}

	results := make([]vector.Result, 0, len(points))
	for _, point := range points {
		result := vector.Result{
			Metadata: make(map[string]string, len(point.Payload)),
			// Cosine similarity to distance.
			Distance: 1 - point.Score,
		}
		for key, value := range point.Payload {
			switch kind := value.Kind.(type) {
			case *qdrant.Value_StringValue:
				if key == "text" {
					result.Text = kind.StringValue
					continue
				}
				result.Metadata[key] = kind.StringValue
			case *qdrant.Value_DoubleValue:
				result.Metadata[key] = strconv.FormatFloat(kind.DoubleValue, 'g', -1, 64)
			}
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

	exists, err := d.client.CollectionExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("%w: checking collection: %v", vector.ErrStore, err)
	}
	if !exists {
		return nil
	}

	if err := d.client.DeleteCollection(ctx, namespace); err != nil {
		return fmt.Errorf("%w: deleting collection: %v", vector.ErrStore, err)
	}

	d.logger.Info("deleted vector namespace", zap.String("namespace", namespace))

	return nil
}

// Close closes the underlying gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// pointID derives a stable UUID from a chunk id so upserts are
// idempotent.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("minutes:chunk:"+chunkID)).String()
}

// payload builds the point payload: chunk text plus metadata, with a
// numeric meeting timestamp for date range filtering.
func payload(rec vector.Record) map[string]any {
	out := make(map[string]any, len(rec.Metadata)+2)
	out["text"] = rec.Text
	for k, v := range rec.Metadata {
		out[k] = v
	}
	if date, ok := rec.Metadata[vector.MetaMeetingDate]; ok {
		if ts, ok := vector.MeetingTimestamp(date); ok {
			out["meeting_ts"] = ts
		}
	}
	return out
}

// queryFilter maps the driver filter onto Qdrant match conditions.
func queryFilter(filter *vector.Filter) *qdrant.Filter {
	if filter == nil {
		return nil
	}

	var must []*qdrant.Condition
	if len(filter.ProjectsNorm) > 0 {
		must = append(must, qdrant.NewMatchKeywords(vector.MetaPrimaryNorm, filter.ProjectsNorm...))
	}
	if filter.DateFrom != "" {
		if ts, ok := vector.MeetingTimestamp(filter.DateFrom); ok {
			must = append(must, qdrant.NewRange("meeting_ts", &qdrant.Range{
				Gte: qdrant.PtrOf(ts),
			}))
		}
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// splitTarget parses "host:port" with a default qdrant gRPC port.
func splitTarget(target string) (string, int, error) {
	if target == "" {
		return "localhost", 6334, nil
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 6334, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}

	return host, port, nil
}

var _ vector.Driver = (*Driver)(nil)
