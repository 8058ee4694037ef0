package segments

import (
	"testing"

	"github.com/google/uuid"
)

func TestEmpty(t *testing.T) {
	tests := []struct {
		name    string
		segment Segment
		want    bool
	}{
		{"no content", Segment{Type: "structured_data"}, true},
		{"whitespace raw content", Segment{RawContent: "   \n\t "}, true},
		{"structured fields", Segment{StructuredData: map[string]any{"item_id": "SKU123456789"}}, false},
		{"raw content", Segment{RawContent: "cycle count variance in zone A"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.segment.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	s := Segment{
		Type:       "  Structured_Data ",
		RawContent: "  received   at dock\ndoor 4  ",
		StructuredData: map[string]any{
			" item_id ": " SKU123456789 ",
			"quantity":  float64(150),
		},
		Keywords: []string{" Receiving ", ""},
		Entities: []string{" Dock Door 4 "},
	}

	n := s.Normalize()

	if n.Type != "structured_data" {
		t.Errorf("Type = %q", n.Type)
	}
	if n.RawContent != "received at dock door 4" {
		t.Errorf("RawContent = %q", n.RawContent)
	}
	if got := n.StructuredData["item_id"]; got != "SKU123456789" {
		t.Errorf("item_id = %v", got)
	}
	if got := n.StructuredData["quantity"]; got != float64(150) {
		t.Errorf("quantity = %v", got)
	}
	if len(n.Keywords) != 1 || n.Keywords[0] != "receiving" {
		t.Errorf("Keywords = %v", n.Keywords)
	}
	if len(n.Entities) != 1 || n.Entities[0] != "Dock Door 4" {
		t.Errorf("Entities = %v", n.Entities)
	}
}

func TestContentHash(t *testing.T) {
	base := Segment{
		ID:   uuid.New(),
		Type: "structured_data",
		StructuredData: map[string]any{
			"location_id": "A-01-B-03",
			"item_id":     "SKU123456789",
			"quantity":    float64(150),
		},
	}

	h1, err := base.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}

	t.Run("identity excluded", func(t *testing.T) {
		other := base
		other.ID = uuid.New()
		other.ConfidenceHint = 0.5

		h2, err := other.ContentHash()
		if err != nil {
			t.Fatalf("ContentHash() error = %v", err)
		}
		if h1 != h2 {
			t.Error("hash changed with identity fields")
		}
	})

	t.Run("whitespace insensitive", func(t *testing.T) {
		other := base
		other.Type = " Structured_Data "
		other.StructuredData = map[string]any{
			"location_id": "  A-01-B-03 ",
			"item_id":     "SKU123456789",
			"quantity":    float64(150),
		}

		h2, err := other.ContentHash()
		if err != nil {
			t.Fatalf("ContentHash() error = %v", err)
		}
		if h1 != h2 {
			t.Error("hash changed with incidental whitespace")
		}
	})

	t.Run("content sensitive", func(t *testing.T) {
		other := base
		other.StructuredData = map[string]any{
			"location_id": "A-01-B-03",
			"item_id":     "SKU123456789",
			"quantity":    float64(151),
		}

		h2, err := other.ContentHash()
		if err != nil {
			t.Fatalf("ContentHash() error = %v", err)
		}
		if h1 == h2 {
			t.Error("hash unchanged with different content")
		}
	})
}

func TestFields(t *testing.T) {
	s := Segment{StructuredData: map[string]any{"item_id": "x", "quantity": float64(1)}}
	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() len = %d", len(fields))
	}
	if _, ok := fields["item_id"]; !ok {
		t.Error("missing item_id")
	}
}
