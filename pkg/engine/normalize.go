package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

// remoteOnlyFields never participate in comparison: they are assigned by
// the platform and unknown to local documents.
var remoteOnlyFields = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
}

// subKeyPriority is the order in which a keyed list element's natural
// sub-key is resolved. Lists whose elements carry one of these fields are
// membership sets, not sequences, and are sorted by the sub-key before
// comparison so position never produces a diff.
var subKeyPriority = []string{"countryCode", "code", "sku", "slug", "name"}

// normalizedMap converts a value to its normalized comparison form: a
// string-keyed map with defaults applied, remote-only fields stripped,
// empty members dropped, and keyed lists sorted.
func normalizedMap(v any, spec schema.SectionSpec) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s entity: %w", spec.Section, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding %s entity: %w", spec.Section, err)
	}

	for field := range remoteOnlyFields {
		delete(m, field)
	}
	for field, def := range spec.Defaults {
		if _, set := m[field]; !set {
			m[field] = def
		}
	}

	normalized := normalizeValue(m)
	out, _ := normalized.(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// normalizeValue recursively canonicalizes a decoded JSON value. Empty
// strings, empty containers, and nulls are treated as unset. Numbers are
// always float64 here; json.Unmarshal into any never yields another
// numeric type.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, member := range val {
			norm := normalizeValue(member)
			if isEmpty(norm) {
				continue
			}
			out[k] = norm
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, member := range val {
			norm := normalizeValue(member)
			if norm == nil {
				continue
			}
			out = append(out, norm)
		}
		if len(out) == 0 {
			return nil
		}
		sortKeyedList(out)
		return out
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

// sortKeyedList orders a list in place. Element maps are ordered by their
// natural sub-key; scalar lists (country codes, referenced slugs) are
// ordered lexically. Mixed or un-keyed lists keep document order.
func sortKeyedList(list []any) {
	if len(list) < 2 {
		return
	}

	if allStrings(list) {
		sort.Slice(list, func(i, j int) bool {
			return list[i].(string) < list[j].(string)
		})
		return
	}

	key := listSubKey(list)
	if key == "" {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return elementKey(list[i], key) < elementKey(list[j], key)
	})
}

func allStrings(list []any) bool {
	for _, v := range list {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

// listSubKey picks the sub-key shared by every map element, if any.
func listSubKey(list []any) string {
	for _, candidate := range subKeyPriority {
		shared := true
		for _, v := range list {
			m, ok := v.(map[string]any)
			if !ok {
				return ""
			}
			if _, present := m[candidate]; !present {
				shared = false
				break
			}
		}
		if shared {
			return candidate
		}
	}
	return ""
}

func elementKey(v any, key string) string {
	m, _ := v.(map[string]any)
	return fmt.Sprint(m[key])
}

// changedFields lists the top-level fields whose normalized values differ,
// sorted by field name for deterministic output.
func changedFields(local, remote map[string]any) []FieldChange {
	fields := make(map[string]struct{}, len(local)+len(remote))
	for k := range local {
		fields[k] = struct{}{}
	}
	for k := range remote {
		fields[k] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	changes := make([]FieldChange, 0)
	for _, name := range names {
		before, after := remote[name], local[name]
		if !reflect.DeepEqual(before, after) {
			changes = append(changes, FieldChange{Field: name, Before: before, After: after})
		}
	}
	return changes
}
