package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saleor/configurator-sub007/pkg/recovery"
	"github.com/saleor/configurator-sub007/pkg/schema"
	"github.com/saleor/configurator-sub007/pkg/telemetry"
)

// DefaultConcurrency bounds in-flight remote writes within a stage when
// the caller does not choose a value.
const DefaultConcurrency = 3

// DeployerConfig wires a Deployer's collaborators.
type DeployerConfig struct {
	Registry *Registry
	Guide    *recovery.Guide
	Logger   zerolog.Logger
	Metrics  *telemetry.Metrics

	// History, when set, records every run. Failures to record are
	// logged and never fail the deployment.
	History RunRecorder

	// Concurrency bounds in-flight operations within a stage.
	Concurrency int

	// DryRun computes and reports without touching the platform.
	DryRun bool
}

// Deployer drives the staged deployment: stages execute strictly
// sequentially, and the first stage that reports failures terminates the
// run with a StageAggregateError. Later stages are never attempted, so
// dependent entities are never built on top of unreviewed failures.
type Deployer struct {
	registry    *Registry
	guide       *recovery.Guide
	log         zerolog.Logger
	metrics     *telemetry.Metrics
	history     RunRecorder
	concurrency int
	dryRun      bool
}

// NewDeployer builds a Deployer from its configuration.
func NewDeployer(cfg DeployerConfig) *Deployer {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	guide := cfg.Guide
	if guide == nil {
		guide = recovery.NewGuide()
	}
	return &Deployer{
		registry:    cfg.Registry,
		guide:       guide,
		log:         cfg.Logger,
		metrics:     cfg.Metrics,
		history:     cfg.History,
		concurrency: concurrency,
		dryRun:      cfg.DryRun,
	}
}

// Deploy applies a diff summary. On success the result carries the total
// applied-operation count; on stage failure the returned error is a
// *StageAggregateError. A context deadline expiring mid-stage surfaces as
// a transport-kind timeout error instead of a partial aggregate.
func (d *Deployer) Deploy(ctx context.Context, summary *Summary) (*DeployResult, error) {
	if summary == nil {
		return nil, NewValidationError("diff summary is required", nil)
	}

	runID := uuid.New().String()
	start := time.Now()
	log := d.log.With().Str("run_id", runID).Logger()

	if d.metrics != nil {
		d.metrics.RunsStarted.Inc()
	}

	if d.dryRun {
		log.Info().Int("total_changes", summary.TotalChanges).Msg("Dry run, no changes applied")
		result := &DeployResult{RunID: runID, DryRun: true}
		d.recordRun(ctx, log, DeployRun{ID: runID, DryRun: true, Status: "dry_run"})
		d.observeCompletion("dry_run", start)
		return result, nil
	}

	stages := PlanStages(summary)
	outcomes := make([]StageOutcome, 0, len(stages))
	applied := 0

	for _, stage := range stages {
		log.Info().
			Str("stage", stage.Name).
			Int("operations", len(stage.Operations)).
			Msg("Executing stage")

		batch := d.executeStage(ctx, log, stage)
		outcome := StageOutcome{
			Name:      stage.Name,
			Section:   stage.Section,
			Succeeded: len(batch.Successes),
			Failed:    len(batch.Failures),
		}
		outcomes = append(outcomes, outcome)
		applied += len(batch.Successes)
		d.observeStage(stage, batch)

		if err := ctx.Err(); err != nil {
			timeoutErr := NewTransportError("deployment interrupted before completion", err)
			d.recordRun(ctx, log, DeployRun{
				ID: runID, Status: "timeout", Applied: applied,
				Error: timeoutErr.Error(), Stages: outcomes,
			})
			d.observeCompletion("timeout", start)
			return nil, timeoutErr
		}

		if len(batch.Failures) > 0 {
			successes := make([]string, len(batch.Successes))
			for i, s := range batch.Successes {
				successes[i] = s.Item.Key
			}
			failures := make([]EntityFailure, len(batch.Failures))
			for i, f := range batch.Failures {
				failures[i] = EntityFailure{Entity: f.Item.Key, Err: f.Err}
			}
			aggErr := NewStageAggregateError(stage.Name, failures, successes, d.guide)

			log.Error().
				Str("stage", stage.Name).
				Int("failed", len(failures)).
				Msg("Stage failed, aborting deployment")
			d.recordRun(ctx, log, DeployRun{
				ID: runID, Status: "failed", Applied: applied,
				Error: aggErr.Error(), Stages: outcomes,
			})
			d.observeCompletion("failed", start)
			return nil, aggErr
		}
	}

	log.Info().Int("applied", applied).Msg("Deployment succeeded")
	d.recordRun(ctx, log, DeployRun{ID: runID, Status: "succeeded", Applied: applied, Stages: outcomes})
	d.observeCompletion("succeeded", start)
	return &DeployResult{RunID: runID, Applied: applied, Stages: outcomes}, nil
}

// executeStage runs one stage through the batch executor. Deletes are
// applied before creates and updates so a natural key can be reused
// within a single run.
func (d *Deployer) executeStage(ctx context.Context, log zerolog.Logger, stage Stage) BatchResult[Operation, schema.Entity] {
	deletes, upserts := splitDeletes(stage.Operations)
	opts := BatchOptions{Concurrency: d.concurrency}
	keyOf := func(op Operation) string { return op.Key }

	result := RunBatch(ctx, log, deletes, stage.Name, keyOf, d.applyOperation, opts)
	upsertResult := RunBatch(ctx, log, upserts, stage.Name, keyOf, d.applyOperation, opts)

	result.Successes = append(result.Successes, upsertResult.Successes...)
	result.Failures = append(result.Failures, upsertResult.Failures...)
	return result
}

// applyOperation dispatches one operation to its repository.
func (d *Deployer) applyOperation(ctx context.Context, op Operation) (schema.Entity, error) {
	if op.Section == schema.SectionShop {
		shop := d.registry.Shop()
		if shop == nil {
			return nil, NewInternalError("no shop repository registered", nil)
		}
		_, err := shop.Update(ctx, op.ShopLocal)
		return nil, err
	}

	repo, err := d.registry.Collection(op.Section)
	if err != nil {
		return nil, err
	}

	switch op.Kind {
	case OperationCreate:
		return repo.Create(ctx, op.Local)
	case OperationUpdate:
		return repo.Update(ctx, op.Remote.RemoteID(), op.Local)
	case OperationDelete:
		return nil, repo.Delete(ctx, op.Remote.RemoteID())
	default:
		return nil, NewInternalError("unknown operation kind "+string(op.Kind), nil).WithEntity(op.Key)
	}
}

func (d *Deployer) observeStage(stage Stage, batch BatchResult[Operation, schema.Entity]) {
	if d.metrics == nil {
		return
	}
	for _, s := range batch.Successes {
		d.metrics.OperationsApplied.WithLabelValues(string(s.Item.Section), string(s.Item.Kind)).Inc()
	}
	if len(batch.Failures) > 0 {
		d.metrics.BatchFailures.WithLabelValues(stage.Name).Add(float64(len(batch.Failures)))
	}
}

func (d *Deployer) observeCompletion(status string, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.RunsCompleted.WithLabelValues(status).Inc()
	d.metrics.RunDuration.Observe(time.Since(start).Seconds())
}

func (d *Deployer) recordRun(ctx context.Context, log zerolog.Logger, run DeployRun) {
	if d.history == nil {
		return
	}
	// Runs are recorded even when the deploy context is already done.
	if err := d.history.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Msg("Failed to record deploy run")
	}
}
