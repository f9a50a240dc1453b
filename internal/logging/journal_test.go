package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewJournal(t *testing.T) {
	t.Run("creates run file under project slug", func(t *testing.T) {
		base := t.TempDir()
		work := filepath.Join(t.TempDir(), "My Vault")
		if err := os.Mkdir(work, 0755); err != nil {
			t.Fatal(err)
		}

		j, err := NewJournal(base, work)
		if err != nil {
			t.Fatalf("NewJournal() error = %v", err)
		}
		defer j.Close()

		if !strings.HasPrefix(filepath.Base(j.Dir), "My_Vault-") {
			t.Errorf("Dir = %s", j.Dir)
		}
		if filepath.Base(j.LogPath) != j.RunID+".jsonl" {
			t.Errorf("LogPath = %s, RunID = %s", j.LogPath, j.RunID)
		}
		if _, err := os.Stat(j.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir", func(t *testing.T) {
		if _, err := NewJournal("", t.TempDir()); err == nil || !strings.Contains(err.Error(), "empty") {
			t.Fatalf("expected empty dir error, got %v", err)
		}
	})

	t.Run("relative base dir resolves against work dir", func(t *testing.T) {
		work := t.TempDir()
		j, err := NewJournal(".taskbase/logs", work)
		if err != nil {
			t.Fatal(err)
		}
		defer j.Close()
		if !strings.HasPrefix(j.Dir, filepath.Join(work, ".taskbase", "logs")) {
			t.Errorf("Dir = %s", j.Dir)
		}
	})
}

func TestJournalRecord(t *testing.T) {
	j, err := NewJournal(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	line := 3
	done := true
	events := []Event{
		{Type: EventRender, Query: "@task", Groups: 2, Tasks: 5, Done: 1},
		{Type: EventToggle, Path: "a.md", Line: &line, Completed: &done},
		{Type: EventQueryError, Error: "bad query"},
	}
	for _, e := range events {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(Event{Type: EventRender}); err == nil {
		t.Error("Record() after Close succeeded")
	}

	f, err := os.Open(j.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %q: %v", scanner.Text(), err)
		}
		got = append(got, e)
	}
	for i := range events {
		events[i].Time = fixed
	}
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("journal (-want +got):\n%s", diff)
	}
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	var r Recorder = j
	if err := r.Record(Event{Type: EventRender}); err != nil {
		t.Errorf("nil Record() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes", "notes"},
		{"My Vault", "My_Vault"},
		{"a//b  c", "a_b_c"},
		{"__x__", "x"},
		{"  ", "vault"},
		{"***", "vault"},
		{"v1.2-beta_3", "v1.2-beta_3"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProjectSlug(t *testing.T) {
	a := projectSlug("/home/me/notes")
	b := projectSlug("/srv/notes")
	if a == b {
		t.Errorf("slugs collide: %s", a)
	}
	if !strings.HasPrefix(a, "notes-") || len(a) != len("notes-")+8 {
		t.Errorf("projectSlug() = %s", a)
	}
	if projectSlug("/home/me/notes") != a {
		t.Error("projectSlug is not deterministic")
	}
}

func TestResolveBaseDir(t *testing.T) {
	if got := resolveBaseDir("/abs/logs/", "/work"); got != filepath.Clean("/abs/logs") {
		t.Errorf("absolute = %s", got)
	}
	if got := resolveBaseDir("logs", "/work"); got != filepath.Join("/work", "logs") {
		t.Errorf("relative = %s", got)
	}
}

func TestResolveProjectRootFallback(t *testing.T) {
	dir := t.TempDir()
	if got := resolveProjectRoot(dir); got == "" {
		t.Error("resolveProjectRoot returned empty")
	}
	if got := resolveProjectRoot(""); got != "." {
		t.Errorf("resolveProjectRoot(\"\") = %s", got)
	}
}
