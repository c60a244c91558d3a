package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minios-linux/xlsync/merge"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("different")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
	if lf.Exists() {
		t.Error("Exists() = true for missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "MyProject")

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.SetTarget(TargetKey("app", "ru"), map[string]string{"hello": "Привет", "world": "Мир"})
	lf.SetTarget(TargetKey("features/login", "de"), map[string]string{"hello": "Hallo", "empty": ""})

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Lock file not created at %s", path)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if !lf2.Exists() {
		t.Error("Exists() = false after save")
	}

	targets, keys := lf2.Stats()
	if targets != 2 {
		t.Errorf("targets = %d, want 2", targets)
	}
	if keys != 3 {
		t.Errorf("keys = %d, want 3 (empty content is not recorded)", keys)
	}
	if got := lf2.Targets(); got[0] != "app/ru" || got[1] != "features/login/de" {
		t.Errorf("Targets() = %v", got)
	}
}

func TestSetTargetReplaces(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]map[string]string)}
	lf.SetTarget("app/de", map[string]string{"a": "A", "b": "B"})
	lf.SetTarget("app/de", map[string]string{"a": "A"})

	if _, ok := lf.Checksums["app/de"]["b"]; ok {
		t.Error("stale key b survived SetTarget")
	}

	lf.SetTarget("app/de", map[string]string{"a": ""})
	if _, ok := lf.Checksums["app/de"]; ok {
		t.Error("target with only empty entries should be removed")
	}
}

func TestCompare(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]map[string]string)}
	lf.SetTarget("app/fr", map[string]string{
		"same":    "Bonjour",
		"edited":  "Salut",
		"cleared": "Au revoir",
	})

	units := []merge.Unit{
		{Key: "same", Text: "Bonjour"},
		{Key: "edited", Text: "Coucou"},
		{Key: "cleared", Text: ""},
		{Key: "added", Text: "Nouveau"},
		{Key: "blank_new", Text: ""},
		// last write wins
		{Key: "same", Text: "Bonjour"},
	}

	got := lf.Compare("app/fr", units)
	want := Report{Changed: 1, Added: 1, Cleared: 1, Unchanged: 1}
	if got != want {
		t.Fatalf("Compare = %+v, want %+v", got, want)
	}
	if !got.Modified() {
		t.Error("Modified() = false")
	}
	if s := got.String(); s != "1 changed, 1 new, 1 cleared" {
		t.Errorf("String() = %q", s)
	}

	if r := lf.Compare("app/fr", []merge.Unit{{Key: "same", Text: "Bonjour"}}); r.Modified() {
		t.Errorf("unchanged import reported as modified: %+v", r)
	}
}

func TestTargetKey(t *testing.T) {
	if got := TargetKey("features/login", "pt-rBR"); got != "features/login/pt-rBR" {
		t.Fatalf("TargetKey = %q", got)
	}
}

func TestSummary(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]map[string]string)}
	if s := lf.Summary(); s != "empty" {
		t.Fatalf("Summary() = %q, want empty", s)
	}
	lf.SetTarget("app/ru", map[string]string{"a": "A"})
	if s := lf.Summary(); s != "1 targets, 1 keys (app/ru: 1 keys)" {
		t.Fatalf("Summary() = %q", s)
	}
}
