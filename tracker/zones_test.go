package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"farmhand/scriptlog"
)

func TestZonesDefaultsWrittenWhenMissing(t *testing.T) {
	dir := t.TempDir()
	zd := LoadZones(dir, scriptlog.Discard())
	if len(zd.Names()) == 0 {
		t.Fatalf("fresh directory has no zones")
	}
	if _, err := os.Stat(filepath.Join(dir, "zones.json")); err != nil {
		t.Fatalf("zones.json not written: %v", err)
	}

	// A second load reads the written file, not the built-in table.
	again := LoadZones(dir, scriptlog.Discard())
	if got, want := len(again.Names()), len(zd.Names()); got != want {
		t.Fatalf("reloaded %d zones, want %d", got, want)
	}
}

func TestZoneFilterAndResolve(t *testing.T) {
	zd := LoadZones(t.TempDir(), scriptlog.Discard())

	got := zd.Filter("dest")
	if len(got) != 1 || got[0] != "Destard" {
		t.Fatalf("Filter(%q) = %v, want [Destard]", "dest", got)
	}

	name, ok := zd.Resolve("dest")
	if !ok || name != "Destard" {
		t.Fatalf("Resolve(%q) = %q, %v; want Destard, true", "dest", name, ok)
	}
	name, ok = zd.Resolve("TOMB OF KINGS")
	if !ok || name != "Tomb of Kings" {
		t.Fatalf("Resolve canonical = %q, %v; want Tomb of Kings, true", name, ok)
	}
	if _, ok := zd.Resolve("Atlantis"); ok {
		t.Fatalf("Resolve(%q) matched, want miss", "Atlantis")
	}
}

func TestZoneFilterEmptyReturnsAllSorted(t *testing.T) {
	zd := LoadZones(t.TempDir(), scriptlog.Discard())
	all := zd.Filter("")
	if len(all) != len(zd.Names()) {
		t.Fatalf("empty filter returned %d zones, want %d", len(all), len(zd.Names()))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] > all[i] {
			t.Fatalf("names out of order: %q before %q", all[i-1], all[i])
		}
	}
}

func TestZoneAdd(t *testing.T) {
	dir := t.TempDir()
	zd := LoadZones(dir, scriptlog.Discard())

	name, err := zd.Add("Fire Temple, fire, temple")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if name != "Fire Temple" {
		t.Fatalf("canonical = %q, want %q", name, "Fire Temple")
	}
	if got, ok := zd.Resolve("temple"); !ok || got != "Fire Temple" {
		t.Fatalf("Resolve alias = %q, %v", got, ok)
	}

	// Persisted: a fresh load resolves the alias too.
	again := LoadZones(dir, scriptlog.Discard())
	if got, ok := again.Resolve("fire"); !ok || got != "Fire Temple" {
		t.Fatalf("Resolve after reload = %q, %v", got, ok)
	}

	if _, err := zd.Add(" , ,"); err == nil {
		t.Fatalf("Add of blank list did not fail")
	}
}

func TestZoneSuggest(t *testing.T) {
	zd := LoadZones(t.TempDir(), scriptlog.Discard())
	got := zd.Suggest("destrad", 3)
	found := false
	for _, s := range got {
		if s == "destard" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Suggest(%q) = %v, want destard included", "destrad", got)
	}
}
