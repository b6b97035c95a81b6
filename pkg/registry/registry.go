// Package registry tracks discovered project aliases per user with
// confidence and occurrence counts, and normalizes aliases for matching.
package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/storage"
)

// Registry is a façade over the storage driver's project rows. One row
// exists per (user, normalized alias); merges increment occurrences and
// overwrite confidence.
type Registry struct {
	store  storage.Driver
	logger *zap.Logger
}

// NewRegistry creates a project registry backed by the given store.
func NewRegistry(store storage.Driver, logger *zap.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
	}
}

// Merge upserts every alias in the affinity map for the user. Aliases are
// normalized first; entries that normalize to the empty string are
// dropped.
func (r *Registry) Merge(ctx context.Context, userID int64, affinity map[string]float64) error {
	for alias, confidence := range affinity {
		norm := Normalize(alias)
		if norm == "" {
			continue
		}
		if err := r.store.UpsertProject(ctx, userID, norm, confidence); err != nil {
			return fmt.Errorf("merging project %q: %w", norm, err)
		}
	}

	if len(affinity) > 0 {
		r.logger.Debug("merged project aliases",
			zap.Int64("user_id", userID),
			zap.Int("count", len(affinity)),
		)
	}

	return nil
}

// List returns the registry rows for a user, ordered by alias.
func (r *Registry) List(ctx context.Context, userID int64) ([]storage.ProjectEntry, error) {
	return r.store.ListProjects(ctx, userID)
}
