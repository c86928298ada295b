package schema

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// DuplicateKeyError reports a natural-key collision within one collection.
// Diffing against a document with duplicate keys is meaningless, so this
// is raised before the diff engine ever runs.
type DuplicateKeyError struct {
	Section Section
	Key     string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s entry %q: natural keys must be unique within a section", e.Section, e.Key)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Natural keys of slug-keyed sections must be URL-safe slugs.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a document for structural validity: struct-level field
// constraints and natural-key uniqueness per collection.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Shop != nil {
		if err := validate.Struct(cfg.Shop); err != nil {
			return fmt.Errorf("invalid shop settings: %w", err)
		}
	}

	for _, section := range AllSections {
		spec := sectionSpecs[section]
		if spec.Singleton {
			continue
		}
		seen := make(map[string]struct{})
		for _, e := range cfg.Entities(section) {
			key := e.NaturalKey()
			if _, dup := seen[key]; dup {
				return &DuplicateKeyError{Section: section, Key: key}
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}
