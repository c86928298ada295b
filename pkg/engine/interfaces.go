package engine

import (
	"context"
	"fmt"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

// EntityRepository wraps the four remote operations for one entity type.
// Implementations perform exactly one remote call per method and never
// retry or aggregate; failure handling lives above this boundary. The
// engine only consumes these as injected capabilities.
type EntityRepository interface {
	List(ctx context.Context) ([]schema.Entity, error)
	Create(ctx context.Context, entity schema.Entity) (schema.Entity, error)
	Update(ctx context.Context, id string, entity schema.Entity) (schema.Entity, error)
	Delete(ctx context.Context, id string) error
}

// ShopRepository wraps the singleton shop-settings operations.
type ShopRepository interface {
	Get(ctx context.Context) (*schema.ShopSettings, error)
	Update(ctx context.Context, settings *schema.ShopSettings) (*schema.ShopSettings, error)
}

// Registry holds the injected repositories, keyed by section.
type Registry struct {
	shop        ShopRepository
	collections map[schema.Section]EntityRepository
}

// NewRegistry builds a registry from the injected repositories.
func NewRegistry(shop ShopRepository, collections map[schema.Section]EntityRepository) *Registry {
	copied := make(map[schema.Section]EntityRepository, len(collections))
	for section, repo := range collections {
		copied[section] = repo
	}
	return &Registry{shop: shop, collections: copied}
}

// Shop returns the shop repository, which may be nil when the caller
// never touches the shop section.
func (r *Registry) Shop() ShopRepository { return r.shop }

// Collection returns the repository for a collection section.
func (r *Registry) Collection(section schema.Section) (EntityRepository, error) {
	repo, ok := r.collections[section]
	if !ok {
		return nil, NewInternalError(fmt.Sprintf("no repository registered for section %q", section), nil)
	}
	return repo, nil
}

// Sections returns the sections with a registered collection repository,
// in dependency order.
func (r *Registry) Sections() []schema.Section {
	sections := make([]schema.Section, 0, len(r.collections))
	for _, s := range schema.AllSections {
		if _, ok := r.collections[s]; ok {
			sections = append(sections, s)
		}
	}
	return sections
}

// RunRecorder persists deploy-run history. Implementations must tolerate
// being nil-checked away: history is an optional capability.
type RunRecorder interface {
	SaveRun(ctx context.Context, run DeployRun) error
}

// DeployRun is the persisted record of one deploy invocation.
type DeployRun struct {
	ID      string
	DryRun  bool
	Status  string
	Applied int
	Error   string
	Stages  []StageOutcome
}
