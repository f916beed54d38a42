package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Delimiter != "\t" || c.DefaultFunction != "mean" || c.DefaultMode != "multiple" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.HTTPTimeoutSec != 60 || !c.S3UseSSL {
		t.Fatalf("unexpected remote defaults: %+v", c)
	}
}

func TestSaveLoadRoundTripAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Delimiter = ","
	c.DefaultFunction = "median"
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".swissknife", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	t.Setenv("SWISSKNIFE_DEFAULT_MODE", "column")
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Delimiter != "," || got.DefaultFunction != "median" {
		t.Fatalf("saved values not loaded: %+v", got)
	}
	if got.DefaultMode != "column" {
		t.Fatalf("env override ignored: %q", got.DefaultMode)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestDefaultsIgnoresEnv(t *testing.T) {
	t.Setenv("SWISSKNIFE_DELIMITER", ",")
	if d := Defaults(); d.Delimiter != "\t" || d.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
