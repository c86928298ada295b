// Package remote implements the repository boundary to the platform's
// administrative API: a thin REST client per entity type and a fetcher
// that assembles the remote snapshot the diff engine compares against.
package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/schema"
)

// snapshotConcurrency bounds the section list calls in flight while
// assembling a snapshot.
const snapshotConcurrency = 4

// Fetcher assembles the remote-state snapshot from the repositories.
type Fetcher struct {
	registry *engine.Registry
	log      zerolog.Logger
}

// NewFetcher creates a snapshot fetcher over the given registry.
func NewFetcher(registry *engine.Registry, log zerolog.Logger) *Fetcher {
	return &Fetcher{registry: registry, log: log}
}

// Snapshot lists every registered section and returns the remote state in
// the same document shape the diff engine expects. Sections are fetched
// concurrently; the first failure aborts the snapshot, since diffing
// against a partial remote state would report spurious creates.
func (f *Fetcher) Snapshot(ctx context.Context) (*schema.Config, error) {
	cfg := &schema.Config{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)

	if shop := f.registry.Shop(); shop != nil {
		g.Go(func() error {
			settings, err := shop.Get(gctx)
			if err != nil {
				return fmt.Errorf("fetching shop settings: %w", err)
			}
			mu.Lock()
			cfg.Shop = settings
			mu.Unlock()
			return nil
		})
	}

	for _, section := range f.registry.Sections() {
		g.Go(func() error {
			repo, err := f.registry.Collection(section)
			if err != nil {
				return err
			}
			entities, err := repo.List(gctx)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", section, err)
			}
			f.log.Debug().
				Str("section", string(section)).
				Int("count", len(entities)).
				Msg("Fetched remote section")

			mu.Lock()
			defer mu.Unlock()
			return cfg.SetEntities(section, entities)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cfg, nil
}
