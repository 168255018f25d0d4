package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Grid.Count() != 18 {
		t.Errorf("default grid count = %d, want 18", cfg.Grid.Count())
	}
	kinds, err := cfg.ParseKinds()
	if err != nil {
		t.Fatalf("parse kinds: %v", err)
	}
	if len(kinds) != 3 {
		t.Errorf("kinds = %v, want 3 entries", kinds)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	cfg := DefaultConfig()
	cfg.Grid.Masses = []float64{0.1, 1.0, 1000.0}
	cfg.Scenario.Duration = 5.0

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scenario.Duration != 5.0 {
		t.Errorf("duration = %v, want 5.0", loaded.Scenario.Duration)
	}
	if len(loaded.Grid.Masses) != 3 {
		t.Errorf("masses = %v, want 3 entries", loaded.Grid.Masses)
	}
	if loaded.Scenario.InitialPosition.Z != DefaultHeight {
		t.Errorf("initial z = %v, want %v", loaded.Scenario.InitialPosition.Z, DefaultHeight)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	if err := os.WriteFile(path, []byte("kinds: \"MaxAbs,Median\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown statistic kind")
	}
}
