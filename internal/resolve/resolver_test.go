package resolve

import (
	"strings"
	"testing"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
	"github.com/wmsforge/stockroom/internal/validate"
)

func newResolver(t *testing.T, cap int) (*Resolver, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	v, err := validate.New(c, 0, 0)
	if err != nil {
		t.Fatalf("validate.New() error = %v", err)
	}
	return New(c, v, cap), c
}

func category(t *testing.T, c *catalog.Catalog, code string) *catalog.Category {
	t.Helper()
	cat, err := c.CategoryByCode(code)
	if err != nil {
		t.Fatalf("CategoryByCode(%s) error = %v", code, err)
	}
	return cat
}

func TestResolveInventorySecondaries(t *testing.T) {
	r, c := newResolver(t, 0)

	seg := &segments.Segment{
		StructuredData: map[string]any{
			"location_id": "A-01-B-03",
			"item_id":     "SKU123456789",
			"quantity":    float64(150),
		},
	}

	secondaries, warnings := r.Resolve(category(t, c, "inventory"), 1.0, seg)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	got := make(map[string]bool)
	for _, s := range secondaries {
		got[s.Category.Code] = true
		if s.SubCategory != catalog.SubRelationships {
			t.Errorf("secondary %s subcategory = %s", s.Category.Code, s.SubCategory)
		}
	}
	if !got["locations"] || !got["items"] {
		t.Errorf("secondaries = %v, want locations and items", got)
	}
	if len(secondaries) != 2 {
		t.Errorf("len = %d, want 2", len(secondaries))
	}
}

func TestResolveCap(t *testing.T) {
	r, c := newResolver(t, 0)

	// Triggers six relevance rules off an orders primary; the cap retains
	// four and reports the rest.
	seg := &segments.Segment{
		StructuredData: map[string]any{
			"order_id":        "ORD-8841027",
			"wave_id":         "W-10",
			"carton_id":       "CTN-0044",
			"tracking_number": "1Z999AA10123456784",
			"carrier":         "UPS",
			"reason_code":     "DMG",
			"quantity":        float64(2),
			"item_id":         "SKU123456789",
			"sku":             "SKU123456789",
		},
	}

	secondaries, warnings := r.Resolve(category(t, c, "orders"), 0.9, seg)

	if len(secondaries) != DefaultCap {
		t.Fatalf("len(secondaries) = %d, want %d", len(secondaries), DefaultCap)
	}
	if len(warnings) != 2 {
		t.Fatalf("len(warnings) = %d, want 2: %v", len(warnings), warnings)
	}
	for _, w := range warnings {
		if !strings.Contains(w, "cap 4 exceeded") {
			t.Errorf("warning %q does not name the cap", w)
		}
	}

	// Highest confidence first.
	for i := 1; i < len(secondaries); i++ {
		if secondaries[i].Confidence > secondaries[i-1].Confidence {
			t.Errorf("secondaries not ordered by confidence at %d", i)
		}
	}
}

func TestResolveFailingSecondaryExcluded(t *testing.T) {
	r, c := newResolver(t, 0)

	// counted_quantity triggers the inventory link, but the nominee fails
	// inventory's required item_id rule and must be excluded. The locations
	// link still passes.
	seg := &segments.Segment{
		StructuredData: map[string]any{
			"location_id":      "A-01-B-03",
			"counted_quantity": float64(5),
		},
	}

	secondaries, _ := r.Resolve(category(t, c, "cycle_counting"), 0.9, seg)
	got := make(map[string]bool)
	for _, s := range secondaries {
		got[s.Category.Code] = true
	}
	if got["inventory"] {
		t.Error("inventory accepted without its required fields")
	}
	if !got["locations"] {
		t.Error("locations missing from secondaries")
	}
}

func TestResolveNoTriggers(t *testing.T) {
	r, c := newResolver(t, 0)

	seg := &segments.Segment{
		StructuredData: map[string]any{"vendor_id": "V-100", "vendor_name": "Acme"},
	}

	secondaries, warnings := r.Resolve(category(t, c, "vendors"), 0.8, seg)
	if len(secondaries) != 0 || len(warnings) != 0 {
		t.Errorf("got %d secondaries, %d warnings, want none", len(secondaries), len(warnings))
	}
}
