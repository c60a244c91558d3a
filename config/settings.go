// Settings come from three layers. Built-in defaults are overridden by
// XLSYNC_* environment variables (a .env file in the project root is
// loaded first), which are overridden by .xlsync.yaml. Command-line flags
// are applied on top by the caller.

package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xlsync/sheet"
)

// SettingsFileName is the project config file name.
const SettingsFileName = ".xlsync.yaml"

// EnvFileName is the optional dotenv file read from the project root.
const EnvFileName = ".env"

// Environment variables consulted by LoadSettings.
const (
	EnvOutputDir       = "XLSYNC_OUTPUT_DIR"
	EnvDefaultLanguage = "XLSYNC_DEFAULT_LANGUAGE"
	EnvFormat          = "XLSYNC_FORMAT"
)

// Defaults.
const (
	DefaultOutputDir    = "out"
	DefaultLanguage     = "en"
	DefaultResourceFile = "strings.xml"
)

// Settings is the .xlsync.yaml structure.
type Settings struct {
	// DefaultLanguage is the language stored in the plain values folder.
	DefaultLanguage string `yaml:"default_language,omitempty"`
	// OutputDir is where spreadsheets are written and read.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Format is "xlsx" or "csv".
	Format string `yaml:"format,omitempty"`
	// ResourceFile is the file name inside each values folder.
	ResourceFile string `yaml:"resource_file,omitempty"`
	// ExcludeModules are module names or path.Match patterns to skip.
	ExcludeModules []string `yaml:"exclude_modules,omitempty"`
	// RemoveHTMLTags strips tags on HTML export.
	RemoveHTMLTags bool `yaml:"remove_html_tags,omitempty"`

	// Source is the settings file that was loaded, empty when none.
	Source string `yaml:"-"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultLanguage: DefaultLanguage,
		OutputDir:       DefaultOutputDir,
		Format:          string(sheet.XLSX),
		ResourceFile:    DefaultResourceFile,
	}
}

// LoadSettings builds the settings for a project rooted at rootDir.
// Neither .env nor .xlsync.yaml is required.
func LoadSettings(rootDir string) (*Settings, error) {
	envPath := filepath.Join(rootDir, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	s := DefaultSettings()
	s.OutputDir = getEnv(EnvOutputDir, s.OutputDir)
	s.DefaultLanguage = getEnv(EnvDefaultLanguage, s.DefaultLanguage)
	s.Format = getEnv(EnvFormat, s.Format)

	path := filepath.Join(rootDir, SettingsFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		s.Source = path
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		if s.Source != "" {
			return nil, fmt.Errorf("%s: %w", s.Source, err)
		}
		return nil, err
	}
	return s, nil
}

// Validate fills empty fields with defaults and checks the rest.
func (s *Settings) Validate() error {
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = DefaultLanguage
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.ResourceFile == "" {
		s.ResourceFile = DefaultResourceFile
	}

	if strings.ContainsAny(s.DefaultLanguage, `/\ `) {
		return fmt.Errorf("invalid default_language %q", s.DefaultLanguage)
	}
	f, err := sheet.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	s.Format = string(f)
	if s.ResourceFile != filepath.Base(s.ResourceFile) || !strings.HasSuffix(s.ResourceFile, ".xml") {
		return fmt.Errorf("resource_file %q must be an .xml file name without directories", s.ResourceFile)
	}
	for _, p := range s.ExcludeModules {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("exclude_modules: bad pattern %q: %w", p, err)
		}
	}
	return nil
}

// SheetFormat returns the validated spreadsheet format.
func (s *Settings) SheetFormat() sheet.Format {
	return sheet.Format(s.Format)
}

// Excluded reports whether a module is listed in ExcludeModules.
func (s *Settings) Excluded(module string) bool {
	for _, p := range s.ExcludeModules {
		if p == module {
			return true
		}
		if ok, _ := path.Match(p, module); ok {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
