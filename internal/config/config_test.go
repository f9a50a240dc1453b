package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.SelectionFile != DefaultSelectionFile {
		t.Errorf("SelectionFile: got %q, want %q", cfg.SelectionFile, DefaultSelectionFile)
	}
	if cfg.DebounceMS != DefaultDebounceMS {
		t.Errorf("DebounceMS: got %d, want %d", cfg.DebounceMS, DefaultDebounceMS)
	}
	if cfg.Locale != "und" {
		t.Errorf("Locale: got %q, want und", cfg.Locale)
	}
	if !cfg.Journal {
		t.Errorf("Journal: got false, want true")
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestDebounce(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{500, 500 * time.Millisecond},
		{20, 20 * time.Millisecond},
		{0, 500 * time.Millisecond},
		{-5, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		cfg := &Config{DebounceMS: tt.ms}
		if got := cfg.Debounce(); got != tt.want {
			t.Errorf("Debounce(%d): got %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKBASE_VAULT", "/notes")
	t.Setenv("TASKBASE_DEBOUNCE_MS", "250")
	t.Setenv("TASKBASE_SCAN_WORKERS", "many")
	t.Setenv("TASKBASE_LOG_CALLER", "yes")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	loadFromEnv(cfg, sources)

	if cfg.VaultDir != "/notes" {
		t.Errorf("VaultDir: got %q, want /notes", cfg.VaultDir)
	}
	if cfg.DebounceMS != 250 {
		t.Errorf("DebounceMS: got %d, want 250", cfg.DebounceMS)
	}
	if cfg.ScanWorkers != DefaultScanWorkers {
		t.Errorf("ScanWorkers: got %d, want default %d", cfg.ScanWorkers, DefaultScanWorkers)
	}
	if !cfg.LogCaller {
		t.Errorf("LogCaller: got false, want true")
	}

	want := map[string]ConfigSource{
		"vault_dir":   SourceEnv,
		"debounce_ms": SourceEnv,
		"log_caller":  SourceEnv,
	}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "taskbase.toml")
	content := []byte(`vault_dir = "notes"
debounce_ms = 100
journal = false
`)
	if err := os.WriteFile(configFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadConfigFile(cfg, configFile, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.VaultDir != "notes" {
		t.Errorf("VaultDir: got %q, want notes", cfg.VaultDir)
	}
	if cfg.DebounceMS != 100 {
		t.Errorf("DebounceMS: got %d, want 100", cfg.DebounceMS)
	}
	if cfg.Journal {
		t.Errorf("Journal: got true, want false")
	}
	if cfg.Locale != DefaultLocale {
		t.Errorf("Locale: got %q, want untouched default", cfg.Locale)
	}

	want := map[string]ConfigSource{
		"vault_dir":   SourceProjFile,
		"debounce_ms": SourceProjFile,
		"journal":     SourceProjFile,
	}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"unknown key": "vault_dir = \"x\"\nmax_iterations = 3\n",
		"wrong type":  "debounce_ms = \"fast\"\n",
		"syntax":      "vault_dir = \n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := &Config{}
			if err := loadConfigFile(cfg, path, nil, SourceUserFile); err == nil {
				t.Fatalf("loadConfigFile(%q): expected error", content)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	type testCase struct {
		input string
		want  string
	}
	tests := []testCase{
		{"~/notes", filepath.Join(home, "notes")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	t.Setenv("TASKBASE_TEST_DIR", "vaults")
	tests = append(tests, testCase{"$TASKBASE_TEST_DIR/work", "vaults/work"})
	if runtime.GOOS == "windows" {
		tests = append(tests,
			testCase{`~\notes`, filepath.Join(home, "notes")},
			testCase{`%TASKBASE_TEST_DIR%\logs`, `vaults\logs`},
		)
	} else {
		tests = append(tests, testCase{`~\notes`, `~\notes`})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandWindowsEnv(t *testing.T) {
	t.Setenv("TASKBASE_TEST_DRIVE", `D:`)
	tests := map[string]string{
		`%TASKBASE_TEST_DRIVE%\vault`: `D:\vault`,
		`%TASKBASE_TEST_MISSING%\x`:    `%TASKBASE_TEST_MISSING%\x`,
		`100%%`:                        `100%`,
		`50% off`:                      `50% off`,
	}
	for in, want := range tests {
		if got := expandWindowsEnv(in); got != want {
			t.Errorf("expandWindowsEnv(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	args := []string{
		"-C", "/srv/vault",
		"--selection", "work.json",
		"--debounce-ms=50",
		"--journal=false",
		"list",
	}
	sources := map[string]ConfigSource{}
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.VaultDir != "/srv/vault" {
		t.Errorf("VaultDir: got %q, want /srv/vault", cfg.VaultDir)
	}
	if cfg.SelectionFile != "work.json" {
		t.Errorf("SelectionFile: got %q, want work.json", cfg.SelectionFile)
	}
	if cfg.DebounceMS != 50 {
		t.Errorf("DebounceMS: got %d, want 50", cfg.DebounceMS)
	}
	if cfg.Journal {
		t.Errorf("Journal: got true, want false")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want unchanged info", cfg.LogLevel)
	}
	if diff := cmp.Diff([]string{"list"}, fs.Args()); diff != "" {
		t.Errorf("remaining args mismatch (-want +got):\n%s", diff)
	}

	want := map[string]ConfigSource{
		"vault_dir":      SourceFlag,
		"selection_file": SourceFlag,
		"debounce_ms":    SourceFlag,
		"journal":        SourceFlag,
	}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithSourcesLayering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv("TASKBASE_SCAN_WORKERS", "8")

	writeFile(t, filepath.Join(home, ".taskbase", "taskbase.toml"),
		"debounce_ms = 100\nlocale = \"de\"\nlog_format = \"json\"\n")
	writeFile(t, filepath.Join(project, "taskbase.toml"),
		"locale = \"sv\"\nvault_dir = \"notes\"\n")
	chdir(t, project)

	fs := pflag.NewFlagSet("taskbase", pflag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"--log-level", "debug"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if cfg.DebounceMS != 100 {
		t.Errorf("DebounceMS: got %d, want 100", cfg.DebounceMS)
	}
	if cfg.Locale != "sv" {
		t.Errorf("Locale: got %q, want sv", cfg.Locale)
	}
	if cfg.ScanWorkers != 8 {
		t.Errorf("ScanWorkers: got %d, want 8", cfg.ScanWorkers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "notes"); cfg.VaultDir != want {
		t.Errorf("VaultDir: got %q, want %q", cfg.VaultDir, want)
	}
	if want := filepath.Join(wd, DefaultSelectionFile); cfg.SelectionFile != want {
		t.Errorf("SelectionFile: got %q, want %q", cfg.SelectionFile, want)
	}

	wantSources := map[string]ConfigSource{
		"vault_dir":      SourceProjFile,
		"selection_file": SourceDefault,
		"log_dir":        SourceDefault,
		"debounce_ms":    SourceUserFile,
		"locale":         SourceProjFile,
		"scan_workers":   SourceEnv,
		"journal":        SourceDefault,
		"log_level":      SourceFlag,
		"log_format":     SourceUserFile,
		"log_timestamps": SourceDefault,
		"log_caller":     SourceDefault,
	}
	if diff := cmp.Diff(wantSources, cws.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
	if len(cws.Files) != 2 {
		t.Fatalf("Files: got %v, want user and project files", cws.Files)
	}
	if got, want := cws.GetConfigFile(), filepath.Join(wd, "taskbase.toml"); got != want {
		t.Errorf("GetConfigFile: got %q, want %q", got, want)
	}

	entries := cws.Entries()
	if len(entries) != len(Fields()) {
		t.Fatalf("Entries: got %d, want %d", len(entries), len(Fields()))
	}
	if e := entries[3]; e.Field != "debounce_ms" || e.Value != "100" || e.Source != SourceUserFile {
		t.Errorf("Entries[3]: got %+v", e)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	tests := map[string][]string{
		"negative debounce": {"--debounce-ms=-1"},
		"negative workers":  {"--workers=-2"},
		"bad locale":        {"--locale", "en-US-@@"},
		"unknown flag":      {"--todo", "x.json"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			fs := pflag.NewFlagSet("taskbase", pflag.ContinueOnError)
			fs.SetOutput(io.Discard)
			if _, err := Load(fs, args); err == nil {
				t.Fatalf("Load(%v): expected error", args)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("decode example: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example has unknown keys: %v", undecoded)
	}
	want := &Config{}
	setDefaults(want)
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("example differs from defaults (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
