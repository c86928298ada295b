package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Section identifies one top-level section of the desired-state document.
type Section string

const (
	SectionShop          Section = "shop"
	SectionAttributes    Section = "attributes"
	SectionChannels      Section = "channels"
	SectionTaxClasses    Section = "taxClasses"
	SectionWarehouses    Section = "warehouses"
	SectionShippingZones Section = "shippingZones"
	SectionProductTypes  Section = "productTypes"
	SectionPageTypes     Section = "pageTypes"
	SectionCategories    Section = "categories"
	SectionCollections   Section = "collections"
	SectionProducts      Section = "products"
	SectionPages         Section = "pages"
	SectionMenus         Section = "menus"
)

// AllSections lists every known section in deployment dependency order:
// attributes before the types that reference them, categories before
// products, tax classes and channels before the zones and warehouses that
// depend on them.
var AllSections = []Section{
	SectionShop,
	SectionAttributes,
	SectionChannels,
	SectionTaxClasses,
	SectionWarehouses,
	SectionShippingZones,
	SectionProductTypes,
	SectionPageTypes,
	SectionCategories,
	SectionCollections,
	SectionProducts,
	SectionPages,
	SectionMenus,
}

// SectionSpec describes the closed shape of one section: whether it is a
// singleton, which field is the natural key, the default values applied
// during normalization, and how to allocate a fresh entity for decoding.
type SectionSpec struct {
	Section   Section
	Singleton bool

	// KeyField is the document name of the natural-key field.
	KeyField string

	// Defaults maps document field names to the value the platform
	// assumes when the field is unset. Normalization fills these in on
	// both sides of a comparison so "unset" and "equal to default"
	// never produce a diff.
	Defaults map[string]any

	// New allocates a zero entity of the section's type, used when
	// decoding remote responses. Nil for the singleton section.
	New func() Entity
}

var sectionSpecs = map[Section]SectionSpec{
	SectionShop: {
		Section:   SectionShop,
		Singleton: true,
		Defaults: map[string]any{
			"defaultWeightUnit":       "KG",
			"trackInventoryByDefault": true,
		},
	},
	SectionAttributes: {
		Section:  SectionAttributes,
		KeyField: "name",
		New:      func() Entity { return &Attribute{} },
	},
	SectionChannels: {
		Section:  SectionChannels,
		KeyField: "slug",
		Defaults: map[string]any{"isActive": true},
		New:      func() Entity { return &Channel{} },
	},
	SectionTaxClasses: {
		Section:  SectionTaxClasses,
		KeyField: "name",
		New:      func() Entity { return &TaxClass{} },
	},
	SectionWarehouses: {
		Section:  SectionWarehouses,
		KeyField: "slug",
		Defaults: map[string]any{"clickAndCollectOption": "DISABLED"},
		New:      func() Entity { return &Warehouse{} },
	},
	SectionShippingZones: {
		Section:  SectionShippingZones,
		KeyField: "name",
		Defaults: map[string]any{"default": false},
		New:      func() Entity { return &ShippingZone{} },
	},
	SectionProductTypes: {
		Section:  SectionProductTypes,
		KeyField: "name",
		Defaults: map[string]any{"isShippingRequired": true},
		New:      func() Entity { return &ProductType{} },
	},
	SectionPageTypes: {
		Section:  SectionPageTypes,
		KeyField: "name",
		New:      func() Entity { return &PageType{} },
	},
	SectionCategories: {
		Section:  SectionCategories,
		KeyField: "slug",
		New:      func() Entity { return &Category{} },
	},
	SectionCollections: {
		Section:  SectionCollections,
		KeyField: "slug",
		Defaults: map[string]any{"isPublished": false},
		New:      func() Entity { return &Collection{} },
	},
	SectionProducts: {
		Section:  SectionProducts,
		KeyField: "slug",
		New:      func() Entity { return &Product{} },
	},
	SectionPages: {
		Section:  SectionPages,
		KeyField: "slug",
		New:      func() Entity { return &Page{} },
	},
	SectionMenus: {
		Section:  SectionMenus,
		KeyField: "slug",
		New:      func() Entity { return &Menu{} },
	},
}

// Spec returns the section spec for a known section.
func Spec(s Section) (SectionSpec, bool) {
	spec, ok := sectionSpecs[s]
	return spec, ok
}

// ParseSection resolves a user-supplied section name, case-insensitively.
func ParseSection(name string) (Section, error) {
	trimmed := strings.TrimSpace(name)
	for _, s := range AllSections {
		if strings.EqualFold(string(s), trimmed) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown section %q (known sections: %s)", name, sectionNames())
}

// ParseSections resolves a list of user-supplied section names.
func ParseSections(names []string) ([]Section, error) {
	sections := make([]Section, 0, len(names))
	for _, n := range names {
		s, err := ParseSection(n)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

func sectionNames() string {
	names := make([]string, len(AllSections))
	for i, s := range AllSections {
		names[i] = string(s)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Entities returns pointers to the entities of a collection section, in
// document order. The shop singleton has no entities and returns nil.
func (c *Config) Entities(s Section) []Entity {
	switch s {
	case SectionChannels:
		return asEntities[Channel, *Channel](c.Channels)
	case SectionAttributes:
		return asEntities[Attribute, *Attribute](c.Attributes)
	case SectionTaxClasses:
		return asEntities[TaxClass, *TaxClass](c.TaxClasses)
	case SectionWarehouses:
		return asEntities[Warehouse, *Warehouse](c.Warehouses)
	case SectionShippingZones:
		return asEntities[ShippingZone, *ShippingZone](c.ShippingZones)
	case SectionProductTypes:
		return asEntities[ProductType, *ProductType](c.ProductTypes)
	case SectionPageTypes:
		return asEntities[PageType, *PageType](c.PageTypes)
	case SectionCategories:
		return asEntities[Category, *Category](c.Categories)
	case SectionCollections:
		return asEntities[Collection, *Collection](c.Collections)
	case SectionProducts:
		return asEntities[Product, *Product](c.Products)
	case SectionPages:
		return asEntities[Page, *Page](c.Pages)
	case SectionMenus:
		return asEntities[Menu, *Menu](c.Menus)
	default:
		return nil
	}
}

// SetEntities replaces a collection section's entities. Used when
// assembling the remote snapshot from repository list calls.
func (c *Config) SetEntities(s Section, entities []Entity) error {
	switch s {
	case SectionChannels:
		return setSection[Channel, *Channel](&c.Channels, entities)
	case SectionAttributes:
		return setSection[Attribute, *Attribute](&c.Attributes, entities)
	case SectionTaxClasses:
		return setSection[TaxClass, *TaxClass](&c.TaxClasses, entities)
	case SectionWarehouses:
		return setSection[Warehouse, *Warehouse](&c.Warehouses, entities)
	case SectionShippingZones:
		return setSection[ShippingZone, *ShippingZone](&c.ShippingZones, entities)
	case SectionProductTypes:
		return setSection[ProductType, *ProductType](&c.ProductTypes, entities)
	case SectionPageTypes:
		return setSection[PageType, *PageType](&c.PageTypes, entities)
	case SectionCategories:
		return setSection[Category, *Category](&c.Categories, entities)
	case SectionCollections:
		return setSection[Collection, *Collection](&c.Collections, entities)
	case SectionProducts:
		return setSection[Product, *Product](&c.Products, entities)
	case SectionPages:
		return setSection[Page, *Page](&c.Pages, entities)
	case SectionMenus:
		return setSection[Menu, *Menu](&c.Menus, entities)
	default:
		return fmt.Errorf("section %q has no entity collection", s)
	}
}

func asEntities[T any, PT interface {
	*T
	Entity
}](items []T) []Entity {
	entities := make([]Entity, len(items))
	for i := range items {
		entities[i] = PT(&items[i])
	}
	return entities
}

func setSection[T any, PT interface {
	*T
	Entity
}](dst *[]T, entities []Entity) error {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		p, ok := e.(PT)
		if !ok {
			return fmt.Errorf("entity %q has unexpected type %T", e.NaturalKey(), e)
		}
		out = append(out, *p)
	}
	*dst = out
	return nil
}
