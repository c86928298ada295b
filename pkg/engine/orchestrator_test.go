package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

// fakeRepository records calls and fails the keys listed in failOn.
type fakeRepository struct {
	mu      sync.Mutex
	created []string
	updated []string
	deleted []string
	failOn  map[string]error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{failOn: make(map[string]error)}
}

func (f *fakeRepository) List(ctx context.Context) ([]schema.Entity, error) {
	return nil, nil
}

func (f *fakeRepository) Create(ctx context.Context, entity schema.Entity) (schema.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[entity.NaturalKey()]; err != nil {
		return nil, err
	}
	f.created = append(f.created, entity.NaturalKey())
	return entity, nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, entity schema.Entity) (schema.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[entity.NaturalKey()]; err != nil {
		return nil, err
	}
	f.updated = append(f.updated, entity.NaturalKey())
	return entity, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeShopRepository struct {
	updated *schema.ShopSettings
}

func (f *fakeShopRepository) Get(ctx context.Context) (*schema.ShopSettings, error) {
	return &schema.ShopSettings{}, nil
}

func (f *fakeShopRepository) Update(ctx context.Context, settings *schema.ShopSettings) (*schema.ShopSettings, error) {
	f.updated = settings
	return settings, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []DeployRun
}

func (f *fakeRecorder) SaveRun(ctx context.Context, run DeployRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRecorder) last(t *testing.T) DeployRun {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runs) == 0 {
		t.Fatal("Expected a recorded run")
	}
	return f.runs[len(f.runs)-1]
}

func categoryOps(keys ...string) []Operation {
	ops := make([]Operation, len(keys))
	for i, key := range keys {
		ops[i] = Operation{
			Section: schema.SectionCategories,
			Kind:    OperationCreate,
			Key:     key,
			Local:   schema.Category{Name: key, Slug: key},
		}
	}
	return ops
}

func newTestDeployer(repos map[schema.Section]EntityRepository, recorder RunRecorder, dryRun bool) *Deployer {
	return NewDeployer(DeployerConfig{
		Registry: NewRegistry(&fakeShopRepository{}, repos),
		Logger:   zerolog.Nop(),
		History:  recorder,
		DryRun:   dryRun,
	})
}

func TestDeploy_NilSummary(t *testing.T) {
	deployer := newTestDeployer(nil, nil, false)
	_, err := deployer.Deploy(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected error for nil summary, got nil")
	}
	if !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDeploy_Success(t *testing.T) {
	categories := newFakeRepository()
	recorder := &fakeRecorder{}
	deployer := newTestDeployer(map[schema.Section]EntityRepository{
		schema.SectionCategories: categories,
	}, recorder, false)

	result, err := deployer.Deploy(context.Background(), NewSummary(categoryOps("accessories", "shoes")))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Applied != 2 {
		t.Errorf("Expected 2 applied operations, got %d", result.Applied)
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if len(categories.created) != 2 {
		t.Errorf("Expected 2 creates, got %v", categories.created)
	}

	run := recorder.last(t)
	if run.Status != "succeeded" || run.Applied != 2 {
		t.Errorf("Expected a succeeded run with 2 applied, got %+v", run)
	}
	if len(run.Stages) != 1 || run.Stages[0].Name != "Creating Categories" {
		t.Errorf("Expected one Creating Categories stage outcome, got %+v", run.Stages)
	}
}

func TestDeploy_StageFailureAbortsRun(t *testing.T) {
	categories := newFakeRepository()
	categories.failOn["kids-shoes"] = NewNotFoundError("parent category not found", nil)
	products := newFakeRepository()
	recorder := &fakeRecorder{}
	deployer := newTestDeployer(map[schema.Section]EntityRepository{
		schema.SectionCategories: categories,
		schema.SectionProducts:   products,
	}, recorder, false)

	ops := categoryOps("accessories", "kids-shoes", "shoes")
	ops = append(ops, Operation{
		Section: schema.SectionProducts,
		Kind:    OperationCreate,
		Key:     "sneaker",
		Local:   schema.Product{Name: "Sneaker", Slug: "sneaker", ProductType: "Shoe"},
	})

	_, err := deployer.Deploy(context.Background(), NewSummary(ops))
	if err == nil {
		t.Fatal("Expected an aggregate error, got nil")
	}

	var aggregate *StageAggregateError
	if !errors.As(err, &aggregate) {
		t.Fatalf("Expected *StageAggregateError, got %T: %v", err, err)
	}
	if got := aggregate.Error(); got != "Creating Categories - 1 of 3 failed" {
		t.Errorf("Expected %q, got %q", "Creating Categories - 1 of 3 failed", got)
	}
	if len(aggregate.Successes()) != 2 {
		t.Errorf("Expected 2 successes recorded, got %v", aggregate.Successes())
	}
	if len(aggregate.Failures()) != 1 || aggregate.Failures()[0].Entity != "kids-shoes" {
		t.Errorf("Expected kids-shoes to fail, got %+v", aggregate.Failures())
	}

	// Later stages never start.
	if len(products.created) != 0 {
		t.Errorf("Expected the products stage to be skipped, got creates %v", products.created)
	}

	run := recorder.last(t)
	if run.Status != "failed" || run.Applied != 2 {
		t.Errorf("Expected a failed run with 2 applied, got %+v", run)
	}
}

func TestDeploy_DryRunTouchesNothing(t *testing.T) {
	categories := newFakeRepository()
	recorder := &fakeRecorder{}
	deployer := newTestDeployer(map[schema.Section]EntityRepository{
		schema.SectionCategories: categories,
	}, recorder, true)

	result, err := deployer.Deploy(context.Background(), NewSummary(categoryOps("shoes")))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.DryRun {
		t.Error("Expected a dry-run result")
	}
	if len(categories.created) != 0 {
		t.Errorf("Expected no creates in dry run, got %v", categories.created)
	}
	if run := recorder.last(t); run.Status != "dry_run" {
		t.Errorf("Expected a dry_run record, got %+v", run)
	}
}

func TestDeploy_CancelledContextIsTransport(t *testing.T) {
	categories := newFakeRepository()
	deployer := newTestDeployer(map[schema.Section]EntityRepository{
		schema.SectionCategories: categories,
	}, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := deployer.Deploy(ctx, NewSummary(categoryOps("shoes")))
	if err == nil {
		t.Fatal("Expected error for cancelled context, got nil")
	}
	if !IsTransport(err) {
		t.Errorf("Expected transport error, got %v", err)
	}
	var aggregate *StageAggregateError
	if errors.As(err, &aggregate) {
		t.Errorf("Expected a plain timeout error, not a partial aggregate: %v", err)
	}
}

func TestDeploy_ShopOperationUsesShopRepository(t *testing.T) {
	shop := &fakeShopRepository{}
	deployer := NewDeployer(DeployerConfig{
		Registry: NewRegistry(shop, nil),
		Logger:   zerolog.Nop(),
	})

	settings := &schema.ShopSettings{HeaderText: "Welcome"}
	summary := NewSummary([]Operation{{
		Section:   schema.SectionShop,
		Kind:      OperationUpdate,
		Key:       "shop",
		ShopLocal: settings,
	}})

	result, err := deployer.Deploy(context.Background(), summary)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("Expected 1 applied operation, got %d", result.Applied)
	}
	if shop.updated == nil || shop.updated.HeaderText != "Welcome" {
		t.Errorf("Expected the shop repository to receive the settings, got %+v", shop.updated)
	}
}

func TestDeploy_DeletesRunBeforeCreates(t *testing.T) {
	channels := newFakeRepository()
	deployer := newTestDeployer(map[schema.Section]EntityRepository{
		schema.SectionChannels: channels,
	}, nil, false)

	summary := NewSummary([]Operation{
		{
			Section: schema.SectionChannels,
			Kind:    OperationCreate,
			Key:     "web",
			Local:   schema.Channel{Name: "Web", Slug: "web", CurrencyCode: "USD", DefaultCountry: "US"},
		},
		{
			Section: schema.SectionChannels,
			Kind:    OperationDelete,
			Key:     "web",
			Remote:  schema.Channel{ID: "ch-old", Name: "Web", Slug: "web", CurrencyCode: "EUR", DefaultCountry: "DE"},
		},
	})

	if _, err := deployer.Deploy(context.Background(), summary); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(channels.deleted) != 1 || channels.deleted[0] != "ch-old" {
		t.Fatalf("Expected the stale channel deleted by remote ID, got %v", channels.deleted)
	}
	if len(channels.created) != 1 || channels.created[0] != "web" {
		t.Fatalf("Expected the replacement created, got %v", channels.created)
	}
}

func TestDeploy_MissingRepositoryFailsTheEntity(t *testing.T) {
	deployer := newTestDeployer(map[schema.Section]EntityRepository{}, nil, false)

	_, err := deployer.Deploy(context.Background(), NewSummary(categoryOps("shoes")))
	var aggregate *StageAggregateError
	if !errors.As(err, &aggregate) {
		t.Fatalf("Expected *StageAggregateError, got %T: %v", err, err)
	}
	if len(aggregate.Failures()) != 1 {
		t.Fatalf("Expected 1 failure, got %+v", aggregate.Failures())
	}
}
