package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Domain errors for catalog lookups.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// Catalog is the loaded, indexed categorization configuration. It is
// immutable after Load; all pipeline stages share one instance.
type Catalog struct {
	Version    string           `toml:"version"`
	Categories []Category       `toml:"categories"`
	Rules      []ValidationRule `toml:"rules"`
	Relevance  []RelevanceRule  `toml:"relevance"`

	byID    map[int]*Category
	byCode  map[string]*Category
	ruleIdx map[int][]ValidationRule
}

// Load reads a catalog overlay from the given TOML file, or returns the
// compiled-in default catalog when path is empty. The loaded catalog is
// validated and indexed before use.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := c.finalize(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Category returns the catalog entry for the given id.
func (c *Catalog) Category(id int) (*Category, error) {
	cat, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownCategory, id)
	}
	return cat, nil
}

// CategoryByCode returns the catalog entry for the given code.
func (c *Catalog) CategoryByCode(code string) (*Category, error) {
	cat, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, code)
	}
	return cat, nil
}

// RulesFor returns the category's validation rules in ascending priority
// order. The returned slice must not be mutated.
func (c *Catalog) RulesFor(categoryID int) []ValidationRule {
	return c.ruleIdx[categoryID]
}

// Collections returns the distinct semantic collection names declared by the
// catalog routing.
func (c *Catalog) Collections() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Collection == "" {
			continue
		}
		if _, ok := seen[cat.Collection]; ok {
			continue
		}
		seen[cat.Collection] = struct{}{}
		out = append(out, cat.Collection)
	}
	return out
}

func (c *Catalog) finalize() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	c.byID = make(map[int]*Category, len(c.Categories))
	c.byCode = make(map[string]*Category, len(c.Categories))

	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.Code == "" || cat.Name == "" {
			return fmt.Errorf("%w: category %d missing code or name", ErrInvalidCatalog, cat.ID)
		}
		if _, dup := c.byID[cat.ID]; dup {
			return fmt.Errorf("%w: duplicate category id %d", ErrInvalidCatalog, cat.ID)
		}
		if _, dup := c.byCode[cat.Code]; dup {
			return fmt.Errorf("%w: duplicate category code %q", ErrInvalidCatalog, cat.Code)
		}
		c.byID[cat.ID] = cat
		c.byCode[cat.Code] = cat
	}

	c.ruleIdx = make(map[int][]ValidationRule)
	for _, r := range c.Rules {
		if _, ok := c.byID[r.CategoryID]; !ok {
			return fmt.Errorf("%w: rule %s references category %d", ErrInvalidCatalog, r.ID, r.CategoryID)
		}
		c.ruleIdx[r.CategoryID] = append(c.ruleIdx[r.CategoryID], r)
	}
	for id := range c.ruleIdx {
		slices.SortStableFunc(c.ruleIdx[id], func(a, b ValidationRule) int {
			return a.Priority - b.Priority
		})
	}

	for _, r := range c.Relevance {
		if _, ok := c.byCode[r.Linked]; !ok {
			return fmt.Errorf("%w: relevance rule %s links unknown category %q", ErrInvalidCatalog, r.ID, r.Linked)
		}
		if r.Primary != "" {
			if _, ok := c.byCode[r.Primary]; !ok {
				return fmt.Errorf("%w: relevance rule %s names unknown primary %q", ErrInvalidCatalog, r.ID, r.Primary)
			}
		}
		if len(r.TriggerFields) == 0 {
			return fmt.Errorf("%w: relevance rule %s has no trigger fields", ErrInvalidCatalog, r.ID)
		}
	}

	return nil
}
