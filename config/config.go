// Package config implements discovery of Android modules and their
// languages, and loading of project settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/xlsync/android"
)

// ErrNoModules is returned by DiscoverModules when the tree holds no res/
// directory with values folders.
var ErrNoModules = errors.New("no Android modules found")

// Module is one Android module of a project.
type Module struct {
	// Name is the module path relative to the project root with a trailing
	// src/main removed, e.g. "app" or "features/login".
	Name string
	// Dir is the directory holding res/, usually <module>/src/main.
	Dir string
}

// ResDir returns the module's res/ directory.
func (m Module) ResDir() string {
	return filepath.Join(m.Dir, "res")
}

// SafeName returns the module name usable as a file name.
func (m Module) SafeName() string {
	return SafeModuleName(m.Name)
}

// SafeModuleName replaces path separators in a module name with "_".
func SafeModuleName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

// skipDirs are never descended into during discovery.
var skipDirs = map[string]bool{
	"build":        true,
	".git":         true,
	".gradle":      true,
	"node_modules": true,
}

// DiscoverModules finds every res/ directory below root that contains at
// least one values* folder. Modules are sorted by name.
func DiscoverModules(root string) ([]Module, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	seen := make(map[string]bool)
	var modules []Module
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if d.Name() != "res" || !hasValuesDir(path) {
			return nil
		}

		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			modules = append(modules, Module{Name: moduleName(absRoot, dir), Dir: dir})
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoModules, root)
	}

	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Name != modules[j].Name {
			return modules[i].Name < modules[j].Name
		}
		return modules[i].Dir < modules[j].Dir
	})
	return modules, nil
}

func hasValuesDir(resDir string) bool {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "values") {
			return true
		}
	}
	return false
}

// moduleName derives the module name of dir (the parent of res/).
func moduleName(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.Base(dir)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "src/main" {
		return "app"
	}
	return strings.TrimSuffix(rel, "/src/main")
}

// ---------------------------------------------------------------------------
// Languages
// ---------------------------------------------------------------------------

// Language is one values folder of a module.
type Language struct {
	// Code is the language as written in the folder qualifier, or the
	// default language for the plain values folder.
	Code string
	// Path is the resource file inside the folder.
	Path string
}

// ModuleLanguages lists the languages of a res/ directory, sorted by
// folder name. Only folders that contain fileName count. When two folders
// map to the same code the first one wins.
func ModuleLanguages(resDir, defaultLang, fileName string) ([]Language, error) {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	seen := make(map[string]bool)
	var langs []Language
	for _, dir := range dirs {
		code, ok := android.LanguageFromDir(dir, defaultLang)
		if !ok || seen[code] {
			continue
		}
		path := filepath.Join(resDir, dir, fileName)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		seen[code] = true
		langs = append(langs, Language{Code: code, Path: path})
	}
	return langs, nil
}

// LanguageCodes returns the codes of langs in order.
func LanguageCodes(langs []Language) []string {
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}
