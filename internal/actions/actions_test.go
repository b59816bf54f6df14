//go:build unix

package actions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	files := map[string]os.FileMode{
		"echo":   0o755,
		"reboot": 0o700,
		"README": 0o644,
	}
	for name, mode := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), mode); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	return &Catalog{Dir: dir}
}

func TestList(t *testing.T) {
	c := newCatalog(t)
	got, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, a := range got {
		names = append(names, a.Name)
	}
	if strings.Join(names, ",") != "echo,reboot" {
		t.Errorf("names = %v, want [echo reboot]", names)
	}
}

func TestList_MissingDir(t *testing.T) {
	c := &Catalog{Dir: filepath.Join(t.TempDir(), "absent")}
	if _, err := c.List(); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestResolve(t *testing.T) {
	c := newCatalog(t)
	a, err := c.Resolve("echo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.Name != "echo" {
		t.Errorf("Name = %q, want echo", a.Name)
	}
	if !filepath.IsAbs(a.Path) || filepath.Base(a.Path) != "echo" {
		t.Errorf("Path = %q, want absolute path to echo", a.Path)
	}
}

func TestResolve_Errors(t *testing.T) {
	c := newCatalog(t)
	tests := []struct {
		name string
		want string
	}{
		{"", "empty action name"},
		{"../etc/passwd", "outside actions dir"},
		{".", "outside actions dir"},
		{"README", "not an executable"},
		{"lib", "not an executable"},
		{"missing", "unknown action"},
	}
	for _, tt := range tests {
		_, err := c.Resolve(tt.name)
		if err == nil {
			t.Errorf("Resolve(%q): expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Resolve(%q) error = %q, want %q", tt.name, err, tt.want)
		}
	}
}

func TestResolve_UnknownIsSentinel(t *testing.T) {
	c := newCatalog(t)
	_, err := c.Resolve("missing")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}
