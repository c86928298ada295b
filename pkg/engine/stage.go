package engine

import (
	"sort"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

// stageDef pins one section to its place in the deployment sequence. The
// order is a fixed, hand-maintained dependency chain: attributes before
// the product and page types that reference them, channels and tax
// classes before zone and warehouse wiring, categories before products.
type stageDef struct {
	section schema.Section
	name    string
}

var stageOrder = []stageDef{
	{schema.SectionShop, "Updating Shop Settings"},
	{schema.SectionAttributes, "Creating Attributes"},
	{schema.SectionChannels, "Creating Channels"},
	{schema.SectionTaxClasses, "Creating Tax Classes"},
	{schema.SectionWarehouses, "Creating Warehouses"},
	{schema.SectionShippingZones, "Creating Shipping Zones"},
	{schema.SectionProductTypes, "Creating Product Types"},
	{schema.SectionPageTypes, "Creating Page Types"},
	{schema.SectionCategories, "Creating Categories"},
	{schema.SectionCollections, "Creating Collections"},
	{schema.SectionProducts, "Creating Products"},
	{schema.SectionPages, "Creating Pages"},
	{schema.SectionMenus, "Creating Menus"},
}

// PlanStages groups a summary's operations into ordered stages. Sections
// without operations are omitted entirely. Within a stage, deletes come
// before creates and updates so a key can be deleted and recreated in the
// same run without colliding; within each kind, keys ascend.
func PlanStages(summary *Summary) []Stage {
	bySection := make(map[schema.Section][]Operation)
	for _, op := range summary.Operations {
		bySection[op.Section] = append(bySection[op.Section], op)
	}

	stages := make([]Stage, 0, len(bySection))
	for _, def := range stageOrder {
		ops := bySection[def.section]
		if len(ops) == 0 {
			continue
		}
		sort.SliceStable(ops, func(i, j int) bool {
			pi, pj := kindPriority(ops[i].Kind), kindPriority(ops[j].Kind)
			if pi != pj {
				return pi > pj
			}
			return ops[i].Key < ops[j].Key
		})
		stages = append(stages, Stage{
			Name:       def.name,
			Section:    def.section,
			Operations: ops,
		})
	}
	return stages
}

// kindPriority orders operations within a stage: deletes first.
func kindPriority(kind OperationKind) int {
	switch kind {
	case OperationDelete:
		return 2
	case OperationCreate:
		return 1
	default:
		return 0
	}
}

// splitDeletes partitions a stage's operations into the delete batch and
// the create/update batch, preserving relative order.
func splitDeletes(ops []Operation) (deletes, upserts []Operation) {
	for _, op := range ops {
		if op.Kind == OperationDelete {
			deletes = append(deletes, op)
			continue
		}
		upserts = append(upserts, op)
	}
	return deletes, upserts
}
