package classify

import (
	"errors"
	"testing"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	return New(cat)
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newClassifier(t)

	if _, err := c.Classify(&segments.Segment{Type: "structured_data"}); !errors.Is(err, ErrInputEmpty) {
		t.Errorf("Classify() error = %v, want ErrInputEmpty", err)
	}
	if _, err := c.Classify(nil); !errors.Is(err, ErrInputEmpty) {
		t.Errorf("Classify(nil) error = %v, want ErrInputEmpty", err)
	}
}

func TestClassifyInventorySegment(t *testing.T) {
	c := newClassifier(t)

	candidates, err := c.Classify(&segments.Segment{
		Type: "structured_data",
		StructuredData: map[string]any{
			"location_id": "A-01-B-03",
			"item_id":     "SKU123456789",
			"quantity":    float64(150),
		},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("Classify() returned no candidates")
	}

	top := candidates[0]
	if top.Category.Code != "inventory" {
		t.Errorf("top candidate = %s, want inventory", top.Category.Code)
	}
	if top.Confidence < 0.8 {
		t.Errorf("confidence = %.2f, want >= 0.8", top.Confidence)
	}
	if top.Method != MethodSchemaMatch {
		t.Errorf("method = %s, want %s", top.Method, MethodSchemaMatch)
	}
	if top.SubCategory != catalog.SubFunctional {
		t.Errorf("subcategory = %s, want %s", top.SubCategory, catalog.SubFunctional)
	}

	codes := make(map[string]bool)
	for _, cand := range candidates {
		codes[cand.Category.Code] = true
	}
	if !codes["locations"] || !codes["items"] {
		t.Errorf("expected locations and items among candidates, got %v", codes)
	}
}

func TestClassifyBoilerplateNote(t *testing.T) {
	c := newClassifier(t)

	candidates, err := c.Classify(&segments.Segment{
		Type:           "text",
		StructuredData: map[string]any{"note": "typically warehouses restock on Fridays"},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	for _, cand := range candidates {
		if cand.Confidence >= 0.70 {
			t.Errorf("candidate %s confidence = %.2f, want all below threshold",
				cand.Category.Code, cand.Confidence)
		}
	}
}

func TestClassifyKeywordSignal(t *testing.T) {
	c := newClassifier(t)

	candidates, err := c.Classify(&segments.Segment{
		Type:       "text",
		RawContent: "forklift scanner maintenance overdue, conveyor down",
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("Classify() returned no candidates")
	}

	top := candidates[0]
	if top.Category.Code != "equipment" {
		t.Errorf("top candidate = %s, want equipment", top.Category.Code)
	}
	if top.Method != MethodKeywordMatch {
		t.Errorf("method = %s, want %s", top.Method, MethodKeywordMatch)
	}
	if top.SubCategory != catalog.SubConfiguration {
		t.Errorf("subcategory = %s, want %s", top.SubCategory, catalog.SubConfiguration)
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	c := newClassifier(t)

	candidates, err := c.Classify(&segments.Segment{
		Type:       "structured_data",
		RawContent: "inventory stock adjustment lot quantity on-hand",
		StructuredData: map[string]any{
			"item_id":         "SKU123456789",
			"location_id":     "A-01-B-03",
			"quantity":        float64(10),
			"lot_number":      "LOT-2026-114",
			"expiration_date": "2027-01-01",
			"uom":             "ea",
		},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	for _, cand := range candidates {
		if cand.Confidence < 0 || cand.Confidence > 1 {
			t.Errorf("candidate %s confidence %.4f out of bounds", cand.Category.Code, cand.Confidence)
		}
	}
}

func TestFuseMonotonic(t *testing.T) {
	weak := fuse(signals{keyword: 0.5})
	stronger := fuse(signals{keyword: 0.5, pattern: 0.5})
	if stronger <= weak {
		t.Errorf("fuse not monotonic: %.4f <= %.4f", stronger, weak)
	}
	if full := fuse(signals{schema: 1, pattern: 1, keyword: 1, textSim: 1}); full > 1 {
		t.Errorf("fuse exceeded 1: %.4f", full)
	}
}

func TestPatternRegistry(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"location_code", "A-01-B-03", true},
		{"location_code", "A-1-B-3", false},
		{"item_code", "SKU123456789", true},
		{"item_code", "SKU123", false},
		{"order_number", "ORD-8841027", true},
		{"order_number", "PO9912345", true},
		{"quantity_unit", "150 ea", true},
		{"quantity_unit", "150", false},
		{"tracking_number", "1Z999AA10123456784", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			re := Pattern(tt.pattern)
			if re == nil {
				t.Fatalf("pattern %s not registered", tt.pattern)
			}
			if got := re.MatchString(tt.value); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}
