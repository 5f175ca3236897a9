package prefs

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.SetString("lastInputDir", "/data/lifs")
	p.SetFloat("windowWidth", 1280)
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := Load()
	if s := got.String("lastInputDir"); s != "/data/lifs" {
		t.Errorf("lastInputDir = %q, want /data/lifs", s)
	}
	if w := got.FloatWithFallback("windowWidth", 960); w != 1280 {
		t.Errorf("windowWidth = %v, want 1280", w)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "nonexistent"))

	p := Load()
	if s := p.String("lastInputDir"); s != "" {
		t.Errorf("lastInputDir = %q, want empty", s)
	}
	if w := p.FloatWithFallback("windowWidth", 960); w != 960 {
		t.Errorf("windowWidth = %v, want the 960 fallback", w)
	}
}
