// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"afisha/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp dir
// with the sqlite backend.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.MediaRoot = filepath.Join(dir, "media")
	cfg.Paths.PostersDir = "posters"
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Database.Backend = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(dir, "afisha.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
