// Package catalog implements the versioned categorization catalog: the fixed
// category set, per-category validation rules, cross-category relevance
// rules, and structured/semantic routing. The catalog is loaded once at
// startup and never mutated by the pipeline, so classification decisions are
// reproducible across runs.
package catalog

// Category is a fixed catalog entry. Schema lists the structured field names
// the category owns; Keywords and Patterns feed the classifier's signal
// sources; Defaults are the only fields the validator permits in stored
// output beyond those present in the input segment. Table and Collection
// route records to the structured and semantic stores.
type Category struct {
	ID          int            `toml:"id"`
	Code        string         `toml:"code"`
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Schema      []string       `toml:"schema"`
	Keywords    []string       `toml:"keywords"`
	Patterns    []string       `toml:"patterns"`
	Defaults    map[string]any `toml:"defaults"`
	Table       string         `toml:"table"`
	Collection  string         `toml:"collection"`
}

// OwnsField reports whether the field name belongs to the category schema.
func (c *Category) OwnsField(name string) bool {
	for _, f := range c.Schema {
		if f == name {
			return true
		}
	}
	return false
}

// SubCategory is one of the five fixed facets every category carries.
type SubCategory string

const (
	SubFunctional    SubCategory = "functional"
	SubTechnical     SubCategory = "technical"
	SubConfiguration SubCategory = "configuration"
	SubRelationships SubCategory = "relationships"
	SubNotes         SubCategory = "notes"
)

// SubCategories lists all valid subcategories.
func SubCategories() []SubCategory {
	return []SubCategory{
		SubFunctional,
		SubTechnical,
		SubConfiguration,
		SubRelationships,
		SubNotes,
	}
}

// ValidSubCategory reports whether s is a declared subcategory.
func ValidSubCategory(s SubCategory) bool {
	for _, v := range SubCategories() {
		if v == s {
			return true
		}
	}
	return false
}
