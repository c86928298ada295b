// Package engine implements the configurator core: the diff engine that
// compares a local desired-state document with the remote snapshot, the
// stage planner that maps operations onto the fixed entity-type
// dependency order, the bounded batch executor, and the deployment
// orchestrator that drives stages sequentially with fail-fast semantics.
//
// The workflow is diff -> plan -> apply:
//
//  1. ComputeDiff joins local and remote entities on their natural keys
//     and emits one CREATE/UPDATE/DELETE operation per differing key.
//  2. PlanStages groups the operations into the fixed stage sequence,
//     deletes ahead of creates and updates within each stage.
//  3. Deployer.Deploy executes stages strictly in order through RunBatch
//     and stops at the first stage with failures, surfacing a
//     *StageAggregateError that renders the full per-entity report.
//
// The engine performs no I/O of its own: all remote access goes through
// the injected EntityRepository and ShopRepository capabilities.
package engine
