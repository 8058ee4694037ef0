package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
)

func newValidator(t *testing.T) (*Validator, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	v, err := New(cat, 0, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v, cat
}

func mustCategory(t *testing.T, c *catalog.Catalog, code string) *catalog.Category {
	t.Helper()
	cat, err := c.CategoryByCode(code)
	if err != nil {
		t.Fatalf("CategoryByCode(%s) error = %v", code, err)
	}
	return cat
}

func TestValidatePasses(t *testing.T) {
	v, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	out := v.Validate(inv, 0.95, &segments.Segment{
		StructuredData: map[string]any{
			"item_id":     "SKU123456789",
			"location_id": "A-01-B-03",
			"quantity":    float64(150),
		},
	})

	if !out.Passed {
		t.Fatalf("Passed = false, failing rule %s", out.FailingRule())
	}
	if !out.Eligible {
		t.Errorf("Eligible = false with confidence %.2f", out.Confidence)
	}
	if out.Confidence != 0.95 {
		t.Errorf("Confidence = %.2f, want 0.95 unchanged", out.Confidence)
	}
}

func TestValidateHardFailures(t *testing.T) {
	v, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	tests := []struct {
		name string
		data map[string]any
		rule string
	}{
		{
			"missing required field",
			map[string]any{"item_id": "SKU123456789"},
			"inv-qty-required",
		},
		{
			"negative quantity",
			map[string]any{"item_id": "SKU123456789", "quantity": float64(-5)},
			"inv-qty-non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Validate(inv, 0.95, &segments.Segment{StructuredData: tt.data})
			if out.Passed {
				t.Fatal("Passed = true, want hard failure")
			}
			if got := out.FailingRule(); got != tt.rule {
				t.Errorf("FailingRule() = %s, want %s", got, tt.rule)
			}
		})
	}
}

func TestValidateSoftPenalty(t *testing.T) {
	v, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	// quantity present but not numeric: data_type rule is soft, the
	// assignment stays valid with a reduced confidence.
	out := v.Validate(inv, 0.90, &segments.Segment{
		StructuredData: map[string]any{
			"item_id":  "SKU123456789",
			"quantity": float64(10),
			"uom":      "ea",
		},
	})
	if !out.Passed {
		t.Fatalf("Passed = false, failing rule %s", out.FailingRule())
	}

	bad := v.Validate(inv, 0.90, &segments.Segment{
		StructuredData: map[string]any{
			"item_id":     "SKU123456789",
			"quantity":    float64(10),
			"location_id": "dock-4",
		},
	})
	if !bad.Passed {
		t.Fatalf("Passed = false, failing rule %s", bad.FailingRule())
	}
	if want := 0.80; math.Abs(bad.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %.2f, want %.2f after pattern penalty", bad.Confidence, want)
	}
}

func TestValidateThresholdDemotion(t *testing.T) {
	v, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	out := v.Validate(inv, 0.65, &segments.Segment{
		StructuredData: map[string]any{
			"item_id":  "SKU123456789",
			"quantity": float64(1),
		},
	})
	if !out.Passed {
		t.Fatalf("Passed = false, failing rule %s", out.FailingRule())
	}
	if out.Eligible {
		t.Error("Eligible = true below threshold")
	}
}

func TestValidateRuleOrder(t *testing.T) {
	v, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	out := v.Validate(inv, 0.9, &segments.Segment{
		StructuredData: map[string]any{"note": "x"},
	})

	if len(out.Results) < 2 {
		t.Fatalf("Results = %d, want full rule evaluation", len(out.Results))
	}
	if out.Results[0].RuleID != "inv-item-required" {
		t.Errorf("first rule = %s, want inv-item-required (priority 1)", out.Results[0].RuleID)
	}
}

func TestCheckContainment(t *testing.T) {
	_, c := newValidator(t)
	inv := mustCategory(t, c, "inventory")

	seg := &segments.Segment{
		StructuredData: map[string]any{"item_id": "SKU123456789", "quantity": float64(3)},
	}

	t.Run("record within input and defaults", func(t *testing.T) {
		record := ProposedRecord(inv, seg)
		if err := CheckContainment(record, seg, inv); err != nil {
			t.Errorf("CheckContainment() error = %v", err)
		}
		if record["uom"] != "ea" {
			t.Errorf("default uom not applied: %v", record["uom"])
		}
	})

	t.Run("invented field rejected", func(t *testing.T) {
		record := ProposedRecord(inv, seg)
		record["reorder_point"] = float64(25)
		err := CheckContainment(record, seg, inv)
		if !errors.Is(err, ErrConstraintViolation) {
			t.Errorf("error = %v, want ErrConstraintViolation", err)
		}
	})

	t.Run("boilerplate free text rejected", func(t *testing.T) {
		noisy := &segments.Segment{
			RawContent:     "typically warehouses restock on Fridays",
			StructuredData: map[string]any{"item_id": "SKU123456789"},
		}
		err := CheckContainment(ProposedRecord(inv, noisy), noisy, inv)
		if !errors.Is(err, ErrConstraintViolation) {
			t.Errorf("error = %v, want ErrConstraintViolation", err)
		}
	})
}
