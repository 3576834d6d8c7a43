package userconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SelectedApp != "" || len(cfg.Locations) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSelectedApp(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := SetSelectedApp("movies"); err != nil {
		t.Fatalf("SetSelectedApp: %v", err)
	}

	got, err := GetSelectedApp()
	if err != nil {
		t.Fatalf("GetSelectedApp: %v", err)
	}
	if got != "movies" {
		t.Errorf("selected = %q, want movies", got)
	}

	if _, err := os.Stat(filepath.Join(home, ".config", "appshell", "config.json")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestLocations(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SetLocation("notes", "/notes/edit/7"); err != nil {
		t.Fatal(err)
	}
	if err := SetLocation("movies", "pages/index/index"); err != nil {
		t.Fatal(err)
	}
	if err := SetSelectedApp("notes"); err != nil {
		t.Fatal(err)
	}

	got, err := GetLocation("notes")
	if err != nil || got != "/notes/edit/7" {
		t.Errorf("notes location = %q, %v", got, err)
	}

	// Selecting an app keeps locations
	got, _ = GetLocation("movies")
	if got != "pages/index/index" {
		t.Errorf("movies location = %q", got)
	}

	if err := SetLocation("notes", ""); err != nil {
		t.Fatal(err)
	}
	got, _ = GetLocation("notes")
	if got != "" {
		t.Errorf("cleared location = %q", got)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "appshell")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Errorf("expected parse error")
	}
}
