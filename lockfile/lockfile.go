// Package lockfile implements xlsync.lock, a record of MD5 checksums of
// every exported cell per module and language. On import the incoming
// spreadsheet is compared against it, so the tool can report which
// translations were edited or added since the export.
//
// The lock file is stored in the project's output folder next to the
// exported spreadsheets.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xlsync/merge"
)

// LockFileName is the default lock file name.
const LockFileName = "xlsync.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the xlsync.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // target -> key -> md5

	path string `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// New returns an empty lock file that will be saved in dir.
func New(dir string) *LockFile {
	return &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      filepath.Join(dir, LockFileName),
	}
}

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	lf := New(dir)
	path := lf.path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(lf.path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(lf.path), err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Exists reports whether the lock file was read from disk or has entries.
func (lf *LockFile) Exists() bool {
	if len(lf.Checksums) > 0 {
		return true
	}
	_, err := os.Stat(lf.path)
	return err == nil
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// TargetKey builds the lock file key for one language of one module,
// e.g. "app/ru" or "features/login/pt-rBR".
func TargetKey(module, lang string) string {
	return path.Join(filepath.ToSlash(module), lang)
}

// SetTarget replaces all checksums of a target with the given
// key -> content entries. Empty contents are not recorded.
func (lf *LockFile) SetTarget(target string, entries map[string]string) {
	m := make(map[string]string, len(entries))
	for key, content := range entries {
		if content != "" {
			m[key] = Hash(content)
		}
	}
	if len(m) == 0 {
		delete(lf.Checksums, target)
		return
	}
	lf.Checksums[target] = m
}

// ---------------------------------------------------------------------------
// Import reports
// ---------------------------------------------------------------------------

// Report counts how incoming translations differ from the last export.
type Report struct {
	Changed   int // exported keys with different text
	Added     int // keys with text that were not exported
	Cleared   int // exported keys whose cell is now empty
	Unchanged int
}

// Modified reports whether anything differs from the export.
func (r Report) Modified() bool {
	return r.Changed+r.Added+r.Cleared > 0
}

func (r Report) String() string {
	return fmt.Sprintf("%d changed, %d new, %d cleared", r.Changed, r.Added, r.Cleared)
}

// Compare checks incoming units of one target against the lock file.
// When a key repeats the last unit counts.
func (lf *LockFile) Compare(target string, units []merge.Unit) Report {
	last := make(map[string]string, len(units))
	for _, u := range units {
		last[u.Key] = u.Text
	}

	existing := lf.Checksums[target]
	var r Report
	for key, text := range last {
		old, known := existing[key]
		switch {
		case text == "" && known:
			r.Cleared++
		case text == "":
		case !known:
			r.Added++
		case old != Hash(text):
			r.Changed++
		default:
			r.Unchanged++
		}
	}
	return r
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of targets and total keys in the lock file.
func (lf *LockFile) Stats() (targets, keys int) {
	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Targets returns sorted list of target keys.
func (lf *LockFile) Targets() []string {
	targets := make([]string, 0, len(lf.Checksums))
	for t := range lf.Checksums {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	targets, keys := lf.Stats()
	if targets == 0 {
		return "empty"
	}

	var parts []string
	for _, t := range lf.Targets() {
		n := len(lf.Checksums[t])
		parts = append(parts, fmt.Sprintf("%s: %d keys", t, n))
	}
	return fmt.Sprintf("%d targets, %d keys (%s)", targets, keys, strings.Join(parts, ", "))
}
