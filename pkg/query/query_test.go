package query_test

import (
	"testing"

	"github.com/wmsforge/stockroom/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "requests", "r").
		Project("id", "id").
		Project("status", "status").
		Project("submitted_at", "submittedAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapFrom(t *testing.T) {
	p := testProjection()
	if got, want := p.From(), "public.requests r"; got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestProjectionMapAlias(t *testing.T) {
	p := testProjection()
	if got := p.Alias(); got != "r" {
		t.Errorf("Alias() = %q, want %q", got, "r")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	if got, want := p.Columns(), "r.id, r.status, r.submitted_at"; got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "status", "r.status"},
		{"mapped camel", "submittedAt", "r.submitted_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	p := testProjection()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty string", "", nil},
		{"single ascending", "status", []query.SortField{{Field: "status"}}},
		{"single descending", "-submittedAt", []query.SortField{{Field: "submittedAt", Descending: true}}},
		{
			"multiple mixed", "status,-submittedAt",
			[]query.SortField{
				{Field: "status"},
				{Field: "submittedAt", Descending: true},
			},
		},
		{
			"spaces and empty parts", " status ,, -submittedAt ",
			[]query.SortField{
				{Field: "status"},
				{Field: "submittedAt", Descending: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r"
	if sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	b := query.NewBuilder(testProjection()).WhereEquals("status", "pending")
	sql, args := b.BuildCount()

	want := "SELECT COUNT(*) FROM public.requests r WHERE r.status = $1"
	if sql != want {
		t.Errorf("BuildCount() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "pending" {
		t.Errorf("BuildCount() args = %v, want [pending]", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "submittedAt", Descending: true})
	sql, args := b.BuildPage(2, 10)

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r ORDER BY r.submitted_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("BuildPage() sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("BuildPage() args = %v, want empty", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc-123")

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderBuildSingleOrNull(t *testing.T) {
	b := query.NewBuilder(testProjection()).WhereEquals("status", "completed")
	sql, args := b.BuildSingleOrNull()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status = $1 LIMIT 1"
	if sql != want {
		t.Errorf("BuildSingleOrNull() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "completed" {
		t.Errorf("BuildSingleOrNull() args = %v, want [completed]", args)
	}
}

func TestBuilderConditionsSkippedForEmptyValues(t *testing.T) {
	b := query.NewBuilder(testProjection()).
		WhereEquals("status", nil).
		WhereContains("id", nil).
		WhereContains("id", ptr("")).
		WhereIn("status", nil).
		WhereSearch(nil, "id")

	sql, args := b.Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereIn(t *testing.T) {
	b := query.NewBuilder(testProjection()).WhereIn("status", []any{"pending", "processing"})
	sql, args := b.Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status IN ($1, $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args length = %d, want 2", len(args))
	}
}

func TestBuilderWhereNullable(t *testing.T) {
	t.Run("nil value generates IS NULL", func(t *testing.T) {
		sql, args := query.NewBuilder(testProjection()).WhereNullable("status", nil).Build()

		want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status IS NULL"
		if sql != want {
			t.Errorf("sql = %q, want %q", sql, want)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("non-nil value generates equals", func(t *testing.T) {
		sql, args := query.NewBuilder(testProjection()).WhereNullable("status", "failed").Build()

		want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status = $1"
		if sql != want {
			t.Errorf("sql = %q, want %q", sql, want)
		}
		if len(args) != 1 || args[0] != "failed" {
			t.Errorf("args = %v, want [failed]", args)
		}
	})
}

func TestBuilderWhereSearch(t *testing.T) {
	b := query.NewBuilder(testProjection()).WhereSearch(ptr("dock"), "id", "status")
	sql, args := b.Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE (r.id ILIKE $1 OR r.status ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != "%dock%" || args[1] != "%dock%" {
		t.Errorf("args = %v, want [%%dock%% %%dock%%]", args)
	}
}

func TestBuilderMultipleConditions(t *testing.T) {
	b := query.NewBuilder(testProjection()).
		WhereEquals("status", "completed").
		WhereContains("id", ptr("abc"))
	sql, args := b.Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status = $1 AND r.id ILIKE $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != "completed" || args[1] != "%abc%" {
		t.Errorf("args = %v, want [completed %%abc%%]", args)
	}
}

func TestBuilderOrderByFieldsOverridesDefault(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "id"})
	b.OrderByFields([]query.SortField{
		{Field: "submittedAt", Descending: true},
		{Field: "status"},
	})
	sql, _ := b.Build()

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r ORDER BY r.submitted_at DESC, r.status ASC"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestBuilderBuildPageWithConditions(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "id"}).
		WhereContains("status", ptr("review"))
	sql, args := b.BuildPage(3, 25)

	want := "SELECT r.id, r.status, r.submitted_at FROM public.requests r WHERE r.status ILIKE $1 ORDER BY r.id ASC LIMIT 25 OFFSET 50"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "%review%" {
		t.Errorf("args = %v, want [%%review%%]", args)
	}
}
