package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/appshell-dev/appshell/internal/cli/endpoint"
)

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{endpoint.EnvPlatform, endpoint.EnvMode, endpoint.EnvBaseURL, endpoint.EnvPageOrigin} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig_RoundTrip(t *testing.T) {
	clearOverrides(t)

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Apps) != 2 {
		t.Fatalf("apps = %d, want 2", len(cfg.Apps))
	}

	notes, err := cfg.GetAppByAlias("notes")
	if err != nil {
		t.Fatalf("GetAppByAlias: %v", err)
	}
	if !notes.Environment().IsLocalWebDev() {
		t.Errorf("notes app should default to local web development")
	}
	if got := notes.Environment().ResolvedBaseURL(); got != "" {
		t.Errorf("notes base URL = %q, want empty", got)
	}

	movies, err := cfg.GetAppByAlias("movies")
	if err != nil {
		t.Fatalf("GetAppByAlias: %v", err)
	}
	if got := movies.Environment().ResolvedBaseURL(); got != "http://192.168.31.84:8086" {
		t.Errorf("movies base URL = %q", got)
	}

	def, err := cfg.GetDefaultApp()
	if err != nil || def.Alias != "notes" {
		t.Errorf("GetDefaultApp = %v, %v", def, err)
	}

	if _, err := cfg.GetAppByAlias("missing"); err == nil {
		t.Errorf("expected error for unknown alias")
	}
}

func TestApp_EnvironmentOverrides(t *testing.T) {
	clearOverrides(t)
	t.Setenv(endpoint.EnvMode, "production")

	app := DefaultConfig().Apps[0]
	env := app.Environment()

	if env.IsLocalWebDev() {
		t.Fatalf("override should leave local web development")
	}
	if got := env.ResolvedBaseURL(); got != "http://127.0.0.1:8088" {
		t.Errorf("base URL = %q", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearOverrides(t)

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{
			name:     "bad json",
			content:  `{apps`,
			contains: "failed to parse",
		},
		{
			name:     "unknown kind",
			content:  `{"apps":[{"alias":"x","kind":"chat","platform":"app","mode":"production","baseUrl":"http://x"}]}`,
			contains: "invalid kind",
		},
		{
			name:     "unknown store",
			content:  `{"apps":[{"alias":"x","kind":"notes","platform":"app","mode":"production","baseUrl":"http://x","store":"s3"}]}`,
			contains: "invalid store",
		},
		{
			name:     "missing base url",
			content:  `{"apps":[{"alias":"x","kind":"movies","platform":"app","mode":"production"}]}`,
			contains: "base URL",
		},
		{
			name: "duplicate alias",
			content: `{"apps":[
				{"alias":"x","kind":"notes","platform":"h5","mode":"development"},
				{"alias":"x","kind":"movies","platform":"app","mode":"production","baseUrl":"http://x"}]}`,
			contains: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	if err := Save(filepath.Join(root, ConfigFileName), DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	path, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile: %v", err)
	}

	// Resolve symlinks (macOS /var -> /private/var)
	want, _ := filepath.EvalSymlinks(filepath.Join(root, ConfigFileName))
	got, _ := filepath.EvalSymlinks(path)
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestGetDefaultApp_Empty(t *testing.T) {
	if _, err := (&Config{}).GetDefaultApp(); err == nil {
		t.Errorf("expected error for empty config")
	}
}
