package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/vango-dev/projgen/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Ports.Min != DefaultPortMin || cfg.Ports.Max != DefaultPortMax {
		t.Errorf("Ports = %+v, want [%d, %d)", cfg.Ports, DefaultPortMin, DefaultPortMax)
	}
	if cfg.ProjectsDir != DefaultProjectsDir {
		t.Errorf("ProjectsDir = %q, want %q", cfg.ProjectsDir, DefaultProjectsDir)
	}
	if cfg.Template != DefaultTemplate {
		t.Errorf("Template = %q, want %q", cfg.Template, DefaultTemplate)
	}
	if cfg.Publish.S3.Enabled() {
		t.Error("Publishing should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// workspaceLoader returns a Loader whose --workspace flag is set to dir.
func workspaceLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("workspace", "", "")
	if err := flags.Parse([]string{"--workspace=" + dir}); err != nil {
		t.Fatal(err)
	}
	l := NewLoader()
	if err := l.BindFlag("workspace", flags.Lookup("workspace")); err != nil {
		t.Fatal(err)
	}
	return l
}

// loadDir loads the configuration of the workspace at dir.
func loadDir(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	return workspaceLoader(t, dir).Load("")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := loadDir(t, tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Workspace != tmpDir {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, tmpDir)
	}
	if got, want := cfg.ProjectPath("demo"), filepath.Join(tmpDir, "projects", "demo"); got != want {
		t.Errorf("ProjectPath = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	configYAML := `projectsDir: apps
sharedDir: packages/shared
postcssConfig: tooling/postcss.config.js
runner: pnpm
ports:
  min: 5000
  max: 5100
log:
  level: debug
  format: json
publish:
  s3:
    bucket: scaffolds
    prefix: demo
    usePathStyle: true
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadDir(t, tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Path() == "" {
		t.Error("Path() should record the loaded file")
	}
	if cfg.ProjectsDir != "apps" {
		t.Errorf("ProjectsDir = %q, want %q", cfg.ProjectsDir, "apps")
	}
	if cfg.Runner != "pnpm" {
		t.Errorf("Runner = %q, want %q", cfg.Runner, "pnpm")
	}
	if cfg.Ports.Min != 5000 || cfg.Ports.Max != 5100 {
		t.Errorf("Ports = %+v", cfg.Ports)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.Log.SlogLevel())
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
	if !cfg.Publish.S3.Enabled() || cfg.Publish.S3.Prefix != "demo" || !cfg.Publish.S3.UsePathStyle {
		t.Errorf("Publish.S3 = %+v", cfg.Publish.S3)
	}
	// Untouched keys keep their defaults.
	if cfg.Publish.S3.Region != "us-east-1" {
		t.Errorf("Publish.S3.Region = %q, want default", cfg.Publish.S3.Region)
	}
	if cfg.Template != DefaultTemplate {
		t.Errorf("Template = %q, want default", cfg.Template)
	}
	if got, want := cfg.SharedPath(), filepath.Join(tmpDir, "packages", "shared"); got != want {
		t.Errorf("SharedPath = %q, want %q", got, want)
	}
	if got, want := cfg.PostCSSPath(), filepath.Join(tmpDir, "tooling", "postcss.config.js"); got != want {
		t.Errorf("PostCSSPath = %q, want %q", got, want)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PROJGEN_PROJECTSDIR", "sandbox")
	t.Setenv("PROJGEN_PUBLISH_S3_BUCKET", "from-env")
	t.Setenv("PROJGEN_PORTS_MIN", "4100")
	t.Setenv("PROJGEN_PORTS_MAX", "4200")

	cfg, err := loadDir(t, tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ProjectsDir != "sandbox" {
		t.Errorf("ProjectsDir = %q, want %q", cfg.ProjectsDir, "sandbox")
	}
	if cfg.Publish.S3.Bucket != "from-env" {
		t.Errorf("Publish.S3.Bucket = %q, want %q", cfg.Publish.S3.Bucket, "from-env")
	}
	if cfg.Ports.Min != 4100 || cfg.Ports.Max != 4200 {
		t.Errorf("Ports = %+v", cfg.Ports)
	}
}

func TestLoader_BindFlag(t *testing.T) {
	tmpDir := t.TempDir()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("projects-dir", "", "")
	flags.String("workspace", "", "")
	if err := flags.Parse([]string{"--projects-dir=out", "--workspace=" + tmpDir}); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	if err := l.BindFlag("projectsDir", flags.Lookup("projects-dir")); err != nil {
		t.Fatal(err)
	}
	if err := l.BindFlag("workspace", flags.Lookup("workspace")); err != nil {
		t.Fatal(err)
	}
	if err := l.BindFlag("missing", flags.Lookup("missing")); err == nil {
		t.Error("binding a nil flag should fail")
	}

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, want := cfg.ProjectsPath(), filepath.Join(tmpDir, "out"); got != want {
		t.Errorf("ProjectsPath = %q, want %q", got, want)
	}
}

func TestLoader_UnchangedFlagKeepsDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("projects-dir", "", "")
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}

	l := workspaceLoader(t, t.TempDir())
	if err := l.BindFlag("projectsDir", flags.Lookup("projects-dir")); err != nil {
		t.Fatal(err)
	}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ProjectsDir != DefaultProjectsDir {
		t.Errorf("ProjectsDir = %q, want %q", cfg.ProjectsDir, DefaultProjectsDir)
	}
}

func TestLoad_ExplicitFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("ports: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.HasCode(err, "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}
}

func TestLoad_InvalidPortsRejected(t *testing.T) {
	tmpDir := t.TempDir()
	content := "ports:\n  min: 4000\n  max: 3000\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := loadDir(t, tmpDir)
	if !errors.HasCode(err, "E121") {
		t.Errorf("Expected E121 error, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero min", func(c *Config) { c.Ports.Min = 0 }, "E121"},
		{"min equals max", func(c *Config) { c.Ports.Min, c.Ports.Max = 3000, 3000 }, "E121"},
		{"max beyond 65536", func(c *Config) { c.Ports.Max = 70000 }, "E121"},
		{"max at 65536", func(c *Config) { c.Ports.Min, c.Ports.Max = 65535, 65536 }, ""},
		{"empty projects dir", func(c *Config) { c.ProjectsDir = " " }, "E122"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "E122"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "E122"},
		{"upper-case level", func(c *Config) { c.Log.Level = "WARN" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("Validate() = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for level, want := range tests {
		if got := (LogConfig{Level: level}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestPaths_Absolute(t *testing.T) {
	cfg := New()
	cfg.Workspace = "/work"
	cfg.ProjectsDir = "/elsewhere/projects"
	cfg.SharedDir = "shared"

	if got := cfg.ProjectsPath(); got != "/elsewhere/projects" {
		t.Errorf("ProjectsPath = %q", got)
	}
	if got := cfg.SharedPath(); got != filepath.Join("/work", "shared") {
		t.Errorf("SharedPath = %q", got)
	}
	if got := cfg.WorkspacePath(); got != "/work" {
		t.Errorf("WorkspacePath = %q", got)
	}
}

func TestYAML_MasksSecrets(t *testing.T) {
	cfg := New()
	cfg.Publish.S3.Bucket = "artifacts"
	cfg.Publish.S3.AccessKeyID = "AKIAEXAMPLE"
	cfg.Publish.S3.SecretAccessKey = "wJalrXUtnFEMI"

	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML error: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "wJalrXUtnFEMI") {
		t.Error("secret leaked into YAML output")
	}
	for _, want := range []string{"bucket: artifacts", "********", "projectsDir: projects", "min: 3000"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
	if cfg.Publish.S3.SecretAccessKey != "wJalrXUtnFEMI" {
		t.Error("YAML modified the receiver")
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir, false)
	if err != nil {
		t.Fatalf("WriteDefault error: %v", err)
	}
	if path != filepath.Join(dir, ConfigFileName) {
		t.Errorf("path = %q", path)
	}

	cfg, err := loadDir(t, dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Workspace != dir {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, dir)
	}
	if cfg.Ports != New().Ports || cfg.Runner != DefaultRunner {
		t.Errorf("defaults not round-tripped: %+v", cfg)
	}

	if _, err := WriteDefault(dir, false); !errors.HasCode(err, "E123") {
		t.Errorf("second WriteDefault = %v, want E123", err)
	}
	if _, err := WriteDefault(dir, true); err != nil {
		t.Errorf("forced WriteDefault = %v", err)
	}
}
