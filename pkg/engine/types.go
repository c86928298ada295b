package engine

import (
	"github.com/saleor/configurator-sub007/pkg/schema"
)

// OperationKind is the type of change a diff operation applies.
type OperationKind string

const (
	OperationCreate OperationKind = "CREATE"
	OperationUpdate OperationKind = "UPDATE"
	OperationDelete OperationKind = "DELETE"
)

// FieldChange records one top-level field difference of an update.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// Operation is one CREATE/UPDATE/DELETE decision for a single entity,
// joined on the natural key. Local is set for creates and updates, Remote
// for updates and deletes. The shop singleton produces at most one UPDATE
// operation with a nil Local/Remote entity pair.
type Operation struct {
	Section schema.Section `json:"section"`
	Kind    OperationKind  `json:"kind"`
	Key     string         `json:"key"`

	Local  schema.Entity `json:"local,omitempty"`
	Remote schema.Entity `json:"remote,omitempty"`

	// ShopLocal/ShopRemote carry the singleton values when Section is
	// the shop section.
	ShopLocal  *schema.ShopSettings `json:"shopLocal,omitempty"`
	ShopRemote *schema.ShopSettings `json:"shopRemote,omitempty"`

	ChangedFields []FieldChange `json:"changedFields,omitempty"`
}

// Summary is the complete result of a diff run. The counters are derived
// from Operations; use NewSummary so they can never drift.
type Summary struct {
	TotalChanges int         `json:"totalChanges"`
	Creates      int         `json:"creates"`
	Updates      int         `json:"updates"`
	Deletes      int         `json:"deletes"`
	Operations   []Operation `json:"operations"`
}

// NewSummary derives the counters from the operation list.
func NewSummary(operations []Operation) *Summary {
	s := &Summary{Operations: operations}
	for _, op := range operations {
		switch op.Kind {
		case OperationCreate:
			s.Creates++
		case OperationUpdate:
			s.Updates++
		case OperationDelete:
			s.Deletes++
		}
	}
	s.TotalChanges = s.Creates + s.Updates + s.Deletes
	return s
}

// Stage is one entity type's slice of a deployment.
type Stage struct {
	Name       string
	Section    schema.Section
	Operations []Operation
}

// ItemSuccess pairs a processed item with its result.
type ItemSuccess[T, R any] struct {
	Item   T
	Result R
}

// ItemFailure pairs a failed item with its normalized error.
type ItemFailure[T any] struct {
	Item T
	Err  error
}

// BatchResult partitions a batch's items by outcome. An item appears in
// exactly one of the two lists, in input order.
type BatchResult[T, R any] struct {
	Successes []ItemSuccess[T, R]
	Failures  []ItemFailure[T]
}

// DeployResult is returned by a fully successful (or dry-run) deploy.
type DeployResult struct {
	RunID   string
	DryRun  bool
	Applied int
	Stages  []StageOutcome
}

// StageOutcome summarizes one executed stage.
type StageOutcome struct {
	Name      string
	Section   schema.Section
	Succeeded int
	Failed    int
}
