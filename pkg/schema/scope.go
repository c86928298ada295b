package schema

import "errors"

// ErrScopeConflict is returned when both include and exclude are supplied.
var ErrScopeConflict = errors.New("include and exclude are mutually exclusive")

// Scope restricts which sections a diff or deploy considers. At most one
// of Include and Exclude may be set; an empty scope selects everything.
type Scope struct {
	Include []Section
	Exclude []Section
}

// Validate checks the scope for conflicting or unknown sections.
func (s Scope) Validate() error {
	if len(s.Include) > 0 && len(s.Exclude) > 0 {
		return ErrScopeConflict
	}
	for _, sec := range append(append([]Section{}, s.Include...), s.Exclude...) {
		if _, ok := sectionSpecs[sec]; !ok {
			if _, err := ParseSection(string(sec)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Contains reports whether a section is selected by the scope.
func (s Scope) Contains(sec Section) bool {
	if len(s.Include) > 0 {
		for _, inc := range s.Include {
			if inc == sec {
				return true
			}
		}
		return false
	}
	for _, exc := range s.Exclude {
		if exc == sec {
			return false
		}
	}
	return true
}

// Sections returns the selected sections in dependency order.
func (s Scope) Sections() []Section {
	selected := make([]Section, 0, len(AllSections))
	for _, sec := range AllSections {
		if s.Contains(sec) {
			selected = append(selected, sec)
		}
	}
	return selected
}
