package query

import (
	"strings"
	"testing"

	"github.com/nibzard/taskbase/internal/selection"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind Kind
		want     string
	}{
		{"today", KindRelativeDate, "date(today)"},
		{"now", KindRelativeDate, "date(now)"},
		{"Today", KindString, `"Today"`},
		{"2024-01-15", KindDate, "date(2024-01-15)"},
		{"2024-1-15", KindString, `"2024-1-15"`},
		{"#2024-01-15", KindTag, `"#2024-01-15"`},
		{"#work", KindTag, `"#work"`},
		{"#true", KindTag, `"#true"`},
		{"#42", KindTag, `"#42"`},
		{"true", KindBool, "true"},
		{"false", KindBool, "false"},
		{"TRUE", KindString, `"TRUE"`},
		{"42", KindNumber, "42"},
		{"-3.25", KindNumber, "-3.25"},
		{"20240115", KindNumber, "20240115"},
		{"1.", KindString, `"1."`},
		{"+1", KindString, `"+1"`},
		{"", KindString, `""`},
		{"active", KindString, `"active"`},
		{`say "hi"`, KindString, `"say \"hi\""`},
		{`back\slash`, KindString, `"back\slash"`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			lit := Classify(tt.raw)
			if lit.Kind != tt.wantKind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.raw, lit.Kind, tt.wantKind)
			}
			if got := lit.Render(); got != tt.want {
				t.Errorf("Classify(%q).Render() = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassifyTagPrecedence(t *testing.T) {
	for _, raw := range []string{"#2024-01-15", "#today", "#false", "#-1.5", "#"} {
		if k := Classify(raw).Kind; k != KindTag {
			t.Errorf("Classify(%q) = %v, want tag", raw, k)
		}
	}
}

func TestBuildFilterExpression(t *testing.T) {
	tests := []struct {
		f    selection.Filter
		want string
	}{
		{selection.Filter{Property: "status", Operator: "=", Value: "active"}, `status = "active"`},
		{selection.Filter{Property: "priority", Operator: ">=", Value: "2"}, `priority >= 2`},
		{selection.Filter{Property: "due", Operator: "<", Value: "today"}, `due < date(today)`},
		{selection.Filter{Property: "start", Operator: "!=", Value: "2024-02-01"}, `start != date(2024-02-01)`},
		{selection.Filter{Property: "$tags", Operator: "contains", Value: "#work"}, `$tags.contains("#work")`},
		{selection.Filter{Property: "title", Operator: "contains", Value: "draft"}, `title.contains("draft")`},
		{selection.Filter{Property: "archived", Operator: "=", Value: "false"}, `archived = false`},
	}
	for _, tt := range tests {
		if got := BuildFilterExpression(tt.f); got != tt.want {
			t.Errorf("BuildFilterExpression(%+v) = %s, want %s", tt.f, got, tt.want)
		}
	}
}

func TestBuildPageQuery(t *testing.T) {
	tests := []struct {
		name string
		src  selection.Source
		want string
	}{
		{"no conditions", selection.Source{Filters: []selection.Filter{}}, "@page"},
		{"nil filters", selection.Source{}, "@page"},
		{"blank folder", selection.Source{Folder: "   "}, "@page"},
		{"folder only", selection.Source{Folder: "Projects"}, `@page and path("Projects")`},
		{"folder trimmed", selection.Source{Folder: " Projects/Q1 "}, `@page and path("Projects/Q1")`},
		{"folder quotes", selection.Source{Folder: `My "Stuff"`}, `@page and path("My \"Stuff\"")`},
		{
			"filters keep order",
			selection.Source{Filters: []selection.Filter{
				{Property: "b", Operator: "=", Value: "1"},
				{Property: "a", Operator: "=", Value: "2"},
			}},
			`@page and b = 1 and a = 2`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPageQuery(tt.src); got != tt.want {
				t.Errorf("BuildPageQuery() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildQueryExample(t *testing.T) {
	def, err := selection.Parse([]byte(`{"version":1,"source":{"folder":"Projects","filters":[{"property":"status","operator":"=","value":"active"}]},"view":{"showCompleted":false,"sortBy":"file","sortDirection":"desc"}}`))
	if err != nil {
		t.Fatal(err)
	}
	want := `@task and childof(@page and path("Projects") and status = "active") and $completed = false`
	if got := Compile(*def); got != want {
		t.Errorf("Compile() = %s\nwant %s", got, want)
	}
}

func TestBuildQueryCompletionClause(t *testing.T) {
	src := selection.Source{Folder: "x"}
	shown := BuildQuery(src, selection.View{ShowCompleted: true})
	if strings.Contains(shown, CompletedField) {
		t.Errorf("showCompleted=true query has completion clause: %s", shown)
	}
	if shown != `@task and childof(@page and path("x"))` {
		t.Errorf("BuildQuery() = %s", shown)
	}
	hidden := BuildQuery(src, selection.View{ShowCompleted: false})
	if !strings.HasSuffix(hidden, " and $completed = false") {
		t.Errorf("showCompleted=false query lacks completion clause: %s", hidden)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Projects`, `"Projects"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\b"`},
		// a trailing backslash is not escaped
		{`C:\`, `"C:\"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
