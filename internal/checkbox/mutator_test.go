package checkbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		completed bool
		want      string
	}{
		{"dash open to done", "- [ ] A", true, "- [x] A"},
		{"done to open", "- [x] A", false, "- [ ] A"},
		{"upper X to open", "* [X] shout", false, "* [ ] shout"},
		{"plus marker", "+ [ ] plus", true, "+ [x] plus"},
		{"indented", "\t  - [ ] deep", true, "\t  - [x] deep"},
		{"no space after marker", "-[ ] tight", true, "-[x] tight"},
		{"already done stays done", "- [x] A", true, "- [x] A"},
		{"rest preserved", "- [ ] [link](x) [ ] #tag  ", true, "- [x] [link](x) [ ] #tag  "},
		{"crlf", "- [ ] win\r", true, "- [x] win\r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetLine(tt.line, 0, tt.completed)
			if err != nil {
				t.Fatalf("SetLine() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SetLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetLineRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		want error
	}{
		{"plain item", "- A", 0, ErrNotACheckbox},
		{"heading", "# [ ] no", 0, ErrNotACheckbox},
		{"other marker", "- [-] cancelled", 0, ErrNotACheckbox},
		{"numbered list", "1. [ ] ordered", 0, ErrNotACheckbox},
		{"negative", "- [ ] A", -1, ErrInvalidLine},
		{"past end", "- [ ] A\n- [ ] B\n- [ ] C", 5, ErrInvalidLine},
		{"trailing newline is not a line", "- [ ] A\n", 1, ErrInvalidLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetLine(tt.text, tt.line, true)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetLine() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckboxState(t *testing.T) {
	if ok, done := checkboxState("  * [X] y"); !ok || !done {
		t.Errorf("checkboxState() = %v, %v", ok, done)
	}
	if ok, done := checkboxState("- [ ] y"); !ok || done {
		t.Errorf("checkboxState() = %v, %v", ok, done)
	}
	if ok, _ := checkboxState("- y"); ok {
		t.Error("plain item reported as checkbox")
	}
}

func TestToggleScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(map[string]string{"a.md": "- [ ] A\n  - [ ] B"})
	m := New(store)

	got, err := m.Toggle(ctx, Target{Path: "a.md", Line: 0, Completed: false})
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !got {
		t.Error("Toggle() returned incomplete state")
	}
	if diff := cmp.Diff("- [x] A\n  - [ ] B", store.File("a.md")); diff != "" {
		t.Errorf("document (-want +got):\n%s", diff)
	}
}

func TestToggleTwiceRestoresBytes(t *testing.T) {
	ctx := context.Background()
	original := "# Title\r\n- [ ] one\r\n\t* [x] two  \r\nplain\n"
	store := NewMemStore(map[string]string{"n.md": original})
	m := New(store)

	for _, line := range []int{1, 2} {
		ok, completed := checkboxState(strings.Split(store.File("n.md"), "\n")[line])
		if !ok {
			t.Fatalf("line %d not a checkbox", line)
		}
		next, err := m.Toggle(ctx, Target{Path: "n.md", Line: line, Completed: completed})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.Toggle(ctx, Target{Path: "n.md", Line: line, Completed: next}); err != nil {
			t.Fatal(err)
		}
		if got := store.File("n.md"); got != original {
			t.Errorf("after double toggle of line %d:\n got %q\nwant %q", line, got, original)
		}
	}
}

func TestToggleChangesOnlyTargetLine(t *testing.T) {
	ctx := context.Background()
	original := "- [ ] a\n- [x] b\n  - [ ] c\ntext\n- [ ] d"
	store := NewMemStore(map[string]string{"n.md": original})
	m := New(store)

	if _, err := m.Toggle(ctx, Target{Path: "n.md", Line: 2}); err != nil {
		t.Fatal(err)
	}
	before := strings.Split(original, "\n")
	after := strings.Split(store.File("n.md"), "\n")
	if len(before) != len(after) {
		t.Fatalf("line count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if i == 2 {
			if after[i] != "  - [x] c" {
				t.Errorf("line 2 = %q", after[i])
			}
			continue
		}
		if before[i] != after[i] {
			t.Errorf("line %d changed: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestToggleFailuresDoNotWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(map[string]string{"three.md": "- [ ] a\n- [ ] b\n- [ ] c"})
	store.AddDir("Projects")
	m := New(store)

	tests := []struct {
		name   string
		target Target
		want   error
	}{
		{"missing", Target{Path: "nope.md"}, ErrNotFound},
		{"directory", Target{Path: "Projects"}, ErrNotAFile},
		{"line past end", Target{Path: "three.md", Line: 5}, ErrInvalidLine},
		{"negative line", Target{Path: "three.md", Line: -1}, ErrInvalidLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Toggle(ctx, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Toggle() error = %v, want %v", err, tt.want)
			}
			var te *ToggleError
			if !errors.As(err, &te) || te.Path != tt.target.Path {
				t.Errorf("error %v does not carry path %q", err, tt.target.Path)
			}
		})
	}
	if store.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", store.Writes())
	}
	if store.File("three.md") != "- [ ] a\n- [ ] b\n- [ ] c" {
		t.Error("document changed after failed toggles")
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(map[string]string{"a.md": "- [ ] A"})
	m := New(store)

	if err := m.SetStatus(ctx, Target{Path: "a.md", Completed: false}, false); err != nil {
		t.Fatal(err)
	}
	// no-op even for a target that would fail
	if err := m.SetStatus(ctx, Target{Path: "missing.md", Completed: true}, true); err != nil {
		t.Fatal(err)
	}
	if store.Writes() != 0 {
		t.Fatalf("SetStatus no-op wrote %d times", store.Writes())
	}

	if err := m.SetStatus(ctx, Target{Path: "a.md", Completed: false}, true); err != nil {
		t.Fatal(err)
	}
	if store.File("a.md") != "- [x] A" || store.Writes() != 1 {
		t.Errorf("SetStatus() file = %q writes = %d", store.File("a.md"), store.Writes())
	}
}

func TestToggleBatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(map[string]string{
		"a.md": "- [ ] a0\n- [ ] a1",
		"b.md": "- [x] b0",
	})
	m := New(store)

	errs := m.ToggleBatch(ctx, []Target{
		{Path: "a.md", Line: 0},
		{Path: "missing.md", Line: 0},
		{Path: "b.md", Line: 0, Completed: true},
		{Path: "a.md", Line: 9},
		{Path: "a.md", Line: 1},
	})
	if len(errs) != 5 {
		t.Fatalf("len(errs) = %d, want 5", len(errs))
	}
	if errs[0] != nil || errs[2] != nil || errs[4] != nil {
		t.Errorf("unexpected errors: %v", errs)
	}
	if !errors.Is(errs[1], ErrNotFound) || !errors.Is(errs[3], ErrInvalidLine) {
		t.Errorf("errs[1]=%v errs[3]=%v", errs[1], errs[3])
	}
	if store.File("a.md") != "- [x] a0\n- [x] a1" || store.File("b.md") != "- [ ] b0" {
		t.Errorf("a.md=%q b.md=%q", store.File("a.md"), store.File("b.md"))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	errs = m.ToggleBatch(cancelled, []Target{{Path: "a.md"}, {Path: "b.md"}})
	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("errs[%d] = %v, want context.Canceled", i, err)
		}
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Projects"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "Projects", "plan.md")
	if err := os.WriteFile(path, []byte("- [ ] A\n  - [ ] B\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(root)
	m := New(store)

	if _, err := m.Toggle(ctx, Target{Path: "Projects/plan.md", Line: 0}); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "- [x] A\n  - [ ] B\n" {
		t.Errorf("file = %q", data)
	}

	if _, err := m.Toggle(ctx, Target{Path: "Projects"}); !errors.Is(err, ErrNotAFile) {
		t.Errorf("directory toggle error = %v", err)
	}
	if _, err := m.Toggle(ctx, Target{Path: "../escape.md"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("escaping toggle error = %v", err)
	}
	if _, err := store.Read(ctx, "../escape.md"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Read() outside root error = %v", err)
	}
}

// checkboxState reports whether s is a checklist line, and its state.
func checkboxState(s string) (ok, completed bool) {
	m := linePattern.FindStringSubmatch(s)
	if m == nil {
		return false, false
	}
	return true, m[2] != " "
}
