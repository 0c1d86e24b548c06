package nbody

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CentralBody != Sun {
		t.Fatalf("default central body = %v, want Sun", cfg.CentralBody)
	}
	if !cfg.Relativity {
		t.Fatalf("default config should enable relativity")
	}
	if cfg.logger() == nil {
		t.Fatalf("logger() should never return nil")
	}
}

func TestLoadCoreConfigWithoutEnvUsesDefaults(t *testing.T) {
	os.Unsetenv("NBODY_CONFIG")
	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig without NBODY_CONFIG should not error: %v", err)
	}
	if cfg.DefaultStep != 1.0 {
		t.Fatalf("default step = %g, want 1.0", cfg.DefaultStep)
	}
}

func TestLoadConfigWithoutEnvMatchesDefaultConfig(t *testing.T) {
	os.Unsetenv("NBODY_CONFIG")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig without NBODY_CONFIG should not error: %v", err)
	}
	want := DefaultConfig()
	if cfg.DefaultStep != want.DefaultStep || cfg.DefaultTolerance != want.DefaultTolerance || cfg.MaxKeplerSplitDepth != want.MaxKeplerSplitDepth {
		t.Fatalf("LoadConfig() = %+v, want numerical defaults matching DefaultConfig() = %+v", cfg, want)
	}
}

func TestLoadCoreConfigMissingDirectoryErrors(t *testing.T) {
	os.Setenv("NBODY_CONFIG", "/nonexistent/path/for/nbody/tests")
	defer os.Unsetenv("NBODY_CONFIG")
	if _, err := LoadCoreConfig(); err == nil {
		t.Fatalf("expected an error when NBODY_CONFIG points at a missing conf.toml")
	}
}

func TestBodyFromString(t *testing.T) {
	b, err := bodyFromString("Earth")
	if err != nil || b != Earth {
		t.Fatalf("bodyFromString(Earth) = %v, %v", b, err)
	}
	if _, err := bodyFromString("Dagobah"); err == nil {
		t.Fatalf("expected an error for an undefined body name")
	}
}
