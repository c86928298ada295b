package engine

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/samber/lo"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

// ComputeDiff compares a local desired-state document with a remote
// snapshot and produces the complete, typed operation list. Both inputs
// must already be validated; performing no I/O, the diff is deterministic:
// sections in dependency order, natural keys ascending within a section.
func ComputeDiff(local, remote *schema.Config, scope schema.Scope) (*Summary, error) {
	if local == nil || remote == nil {
		return nil, NewValidationError("both local and remote documents are required", nil)
	}
	if err := scope.Validate(); err != nil {
		return nil, NewValidationError("invalid scope", err)
	}

	operations := make([]Operation, 0)
	for _, section := range scope.Sections() {
		spec, ok := schema.Spec(section)
		if !ok {
			return nil, NewInternalError(fmt.Sprintf("section %q has no spec", section), nil)
		}

		if spec.Singleton {
			op, err := diffShop(local.Shop, remote.Shop, spec)
			if err != nil {
				return nil, err
			}
			if op != nil {
				operations = append(operations, *op)
			}
			continue
		}

		sectionOps, err := diffCollection(section, spec, local.Entities(section), remote.Entities(section))
		if err != nil {
			return nil, err
		}
		operations = append(operations, sectionOps...)
	}

	return NewSummary(operations), nil
}

// diffShop compares the singleton shop section. A local document without
// a shop section expresses no desire about it and produces nothing.
func diffShop(local, remote *schema.ShopSettings, spec schema.SectionSpec) (*Operation, error) {
	if local == nil {
		return nil, nil
	}
	if remote == nil {
		remote = &schema.ShopSettings{}
	}

	localMap, err := normalizedMap(local, spec)
	if err != nil {
		return nil, err
	}
	remoteMap, err := normalizedMap(remote, spec)
	if err != nil {
		return nil, err
	}
	if reflect.DeepEqual(localMap, remoteMap) {
		return nil, nil
	}

	return &Operation{
		Section:       spec.Section,
		Kind:          OperationUpdate,
		Key:           string(spec.Section),
		ShopLocal:     local,
		ShopRemote:    remote,
		ChangedFields: changedFields(localMap, remoteMap),
	}, nil
}

// diffCollection joins the two sides on the natural key and emits exactly
// one operation per key in the union, or none when the normalized values
// match.
func diffCollection(section schema.Section, spec schema.SectionSpec, local, remote []schema.Entity) ([]Operation, error) {
	localByKey := lo.KeyBy(local, schema.Entity.NaturalKey)
	remoteByKey := lo.KeyBy(remote, schema.Entity.NaturalKey)

	keys := lo.Union(lo.Keys(localByKey), lo.Keys(remoteByKey))
	sort.Strings(keys)

	operations := make([]Operation, 0, len(keys))
	for _, key := range keys {
		localEntity, inLocal := localByKey[key]
		remoteEntity, inRemote := remoteByKey[key]

		switch {
		case inLocal && !inRemote:
			operations = append(operations, Operation{
				Section: section,
				Kind:    OperationCreate,
				Key:     key,
				Local:   localEntity,
			})
		case !inLocal && inRemote:
			operations = append(operations, Operation{
				Section: section,
				Kind:    OperationDelete,
				Key:     key,
				Remote:  remoteEntity,
			})
		default:
			localMap, err := normalizedMap(localEntity, spec)
			if err != nil {
				return nil, err
			}
			remoteMap, err := normalizedMap(remoteEntity, spec)
			if err != nil {
				return nil, err
			}
			if reflect.DeepEqual(localMap, remoteMap) {
				continue
			}
			operations = append(operations, Operation{
				Section:       section,
				Kind:          OperationUpdate,
				Key:           key,
				Local:         localEntity,
				Remote:        remoteEntity,
				ChangedFields: changedFields(localMap, remoteMap),
			})
		}
	}
	return operations, nil
}
