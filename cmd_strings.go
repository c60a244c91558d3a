package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xlsync/android"
	"github.com/minios-linux/xlsync/config"
	"github.com/minios-linux/xlsync/i18n"
	"github.com/minios-linux/xlsync/lockfile"
	"github.com/minios-linux/xlsync/merge"
	"github.com/minios-linux/xlsync/sheet"
)

// errModuleSkipped marks a module-local failure that was already reported.
var errModuleSkipped = errors.New("module skipped")

// ---------------------------------------------------------------------------
// strings (Android resources)
// ---------------------------------------------------------------------------

func newStringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings",
		Short: "Export or import Android strings.xml translations",
	}
	cmd.AddCommand(newStringsExportCmd(), newStringsImportCmd())
	return cmd
}

func newStringsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [android-root]",
		Short: "Export every module's strings to one spreadsheet per module",
		Long: `Discover all Android modules below android-root (default: current
directory) and write <output-dir>/<project>/<module>/<module>.xlsx with
one row per key and one column per language. Keys are sorted; array
items appear as name,index.

Checksums of the exported cells are kept in <output-dir>/<project>/xlsync.lock
so that a later import can report what translators changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := requireDir(rootArg(args), i18n.T("Android root path"))
			if err != nil {
				return err
			}
			s, err := resolveSettings(cmd, root)
			if err != nil {
				return err
			}
			_, err = runStringsExport(root, s)
			return err
		},
	}
}

func newStringsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [android-root]",
		Short: "Import spreadsheets back into the modules' strings.xml files",
		Long: `Read <output-dir>/<project>/<module>/<module>.xlsx (or .csv) for every
module below android-root and merge each language column into the
matching values folder. Existing key order, non-translatable entries and
string arrays are kept; new keys are appended; an empty cell removes the
key from that language.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := requireDir(rootArg(args), i18n.T("Android root path"))
			if err != nil {
				return err
			}
			s, err := resolveSettings(cmd, root)
			if err != nil {
				return err
			}
			_, err = runStringsImport(root, s)
			return err
		},
	}
}

// runSummary counts processed modules.
type runSummary struct {
	ok, total int
}

// discover finds the modules of root, dropping excluded ones.
func discover(root string, s *config.Settings) ([]config.Module, error) {
	logInfo(i18n.T("Discovering Android modules in: %s"), root)
	modules, err := config.DiscoverModules(root)
	if err != nil {
		return nil, err
	}

	var kept []config.Module
	for _, m := range modules {
		if s.Excluded(m.Name) {
			log.Debug().Str("module", m.Name).Msg(i18n.T("Excluded by settings"))
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w in %s (all excluded)", config.ErrNoModules, root)
	}

	logInfo(i18n.N("Found %d module:", "Found %d modules:", len(kept)), len(kept))
	for _, m := range kept {
		fmt.Fprintf(os.Stderr, "  • %s\n", m.Name)
	}
	return kept, nil
}

// projectOutputDir returns <output-dir>/<project> for an Android root.
func projectOutputDir(root string, s *config.Settings) string {
	return filepath.Join(s.OutputDir, filepath.Base(root))
}

// moduleSheetPath returns the spreadsheet path of a module in format f.
func moduleSheetPath(projectOut string, m config.Module, f sheet.Format) string {
	return filepath.Join(projectOut, filepath.FromSlash(m.Name), m.SafeName()+f.Ext())
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func runStringsExport(root string, s *config.Settings) (runSummary, error) {
	modules, err := discover(root, s)
	if err != nil {
		return runSummary{}, err
	}

	projectOut := projectOutputDir(root, s)
	logInfo(i18n.T("Output directory: %s"), projectOut)

	lock, err := lockfile.Load(projectOut)
	if err != nil {
		logWarning(i18n.T("Ignoring lock file: %v"), err)
		lock = lockfile.New(projectOut)
	}

	sum := runSummary{total: len(modules)}
	for _, m := range modules {
		if err := exportModule(m, s, projectOut, lock); err != nil {
			if !errors.Is(err, errModuleSkipped) {
				log.Warn().Str("module", m.Name).Err(err).Msg(i18n.T("Export failed"))
			}
			continue
		}
		sum.ok++
	}

	if sum.ok > 0 {
		if err := lock.Save(); err != nil {
			logWarning("%v", err)
		}
	}

	fmt.Fprintln(os.Stderr)
	logSuccess(i18n.T("Successfully exported %d/%d module(s)"), sum.ok, sum.total)
	logInfo(i18n.T("Output location: %s"), projectOut)
	return sum, nil
}

func exportModule(m config.Module, s *config.Settings, projectOut string, lock *lockfile.LockFile) error {
	fmt.Fprintln(os.Stderr)
	logInfo(i18n.T("Module: %s"), m.Name)
	log.Debug().Str("module", m.Name).Str("path", m.Dir).Send()

	langs, err := config.ModuleLanguages(m.ResDir(), s.DefaultLanguage, s.ResourceFile)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		log.Warn().Str("module", m.Name).Msgf(i18n.T("No %s found in any values folder"), s.ResourceFile)
		return errModuleSkipped
	}

	values := make(map[string]map[string]string, len(langs))
	for _, l := range langs {
		r, err := android.ReadResource(l.Path)
		if err != nil {
			log.Warn().Str("module", m.Name).Str("lang", l.Code).Err(err).Msg(i18n.T("Treating file as empty"))
		}
		log.Debug().Str("lang", l.Code).Int("keys", r.Len()).Int("foreign", len(r.Foreign)).Msg(i18n.T("Parsed"))
		values[l.Code] = r.Values
	}

	codes := config.LanguageCodes(langs)
	table := sheet.Extract(codes, values)
	if len(table.Rows) == 0 {
		log.Info().Str("module", m.Name).Msg(i18n.T("No strings found"))
		return errModuleSkipped
	}

	path := moduleSheetPath(projectOut, m, s.SheetFormat())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := sheet.WriteFile(path, table); err != nil {
		return err
	}

	for _, code := range codes {
		lock.SetTarget(lockfile.TargetKey(m.Name, code), values[code])
	}

	logSuccess(i18n.T("Exported to: %s"), relTo(s.OutputDir, path))
	logInfo(i18n.T("Strings: %d, Languages: %s"), len(table.Rows), strings.Join(codes, ", "))
	return nil
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

func runStringsImport(root string, s *config.Settings) (runSummary, error) {
	projectOut := projectOutputDir(root, s)
	if _, err := requireDir(projectOut, i18n.T("Export directory")); err != nil {
		return runSummary{}, err
	}

	modules, err := discover(root, s)
	if err != nil {
		return runSummary{}, err
	}

	lock, err := lockfile.Load(projectOut)
	if err != nil {
		logWarning(i18n.T("Ignoring lock file: %v"), err)
		lock = nil
	} else if !lock.Exists() {
		lock = nil
	}

	sum := runSummary{total: len(modules)}
	for _, m := range modules {
		if err := importModule(m, s, projectOut, lock); err != nil {
			if !errors.Is(err, errModuleSkipped) {
				log.Warn().Str("module", m.Name).Err(err).Msg(i18n.T("Import failed"))
			}
			continue
		}
		sum.ok++
	}

	fmt.Fprintln(os.Stderr)
	logSuccess(i18n.T("Successfully imported %d/%d module(s)"), sum.ok, sum.total)
	return sum, nil
}

// findModuleSheet returns the module's spreadsheet, trying the configured
// format first.
func findModuleSheet(projectOut string, m config.Module, preferred sheet.Format) (string, bool) {
	formats := []sheet.Format{preferred}
	for _, f := range []sheet.Format{sheet.XLSX, sheet.CSV} {
		if f != preferred {
			formats = append(formats, f)
		}
	}
	for _, f := range formats {
		if p := moduleSheetPath(projectOut, m, f); fileExists(p) {
			return p, true
		}
	}
	return moduleSheetPath(projectOut, m, preferred), false
}

func importModule(m config.Module, s *config.Settings, projectOut string, lock *lockfile.LockFile) error {
	fmt.Fprintln(os.Stderr)
	logInfo(i18n.T("Module: %s"), m.Name)

	path, ok := findModuleSheet(projectOut, m, s.SheetFormat())
	if !ok {
		log.Warn().Str("module", m.Name).Str("file", relTo(s.OutputDir, path)).Msg(i18n.T("Spreadsheet not found"))
		return errModuleSkipped
	}
	logInfo(i18n.T("Source: %s"), filepath.Base(path))

	table, err := sheet.ReadFile(path)
	if err != nil {
		return err
	}
	langs := table.Languages()
	if len(langs) == 0 {
		log.Warn().Str("module", m.Name).Msg(i18n.T("No data found in spreadsheet"))
		return errModuleSkipped
	}

	for _, lang := range langs {
		importLanguage(m, s, table, lang, lock)
	}
	return nil
}

// importLanguage merges one language column into its resource file.
// Failures are reported and stay local to the language.
func importLanguage(m config.Module, s *config.Settings, table *sheet.Table, lang string, lock *lockfile.LockFile) {
	l := log.With().Str("module", m.Name).Str("lang", lang).Logger()
	path := android.ResourcePath(m.ResDir(), lang, s.DefaultLanguage, s.ResourceFile)

	existing, err := android.ReadResource(path)
	if err != nil {
		l.Warn().Err(err).Msg(i18n.T("Treating file as empty"))
	}

	units := table.Units(lang)
	if lock != nil {
		report := lock.Compare(lockfile.TargetKey(m.Name, lang), units)
		if report.Modified() {
			l.Info().Msgf(i18n.T("Changes since export: %s"), report)
		} else {
			l.Debug().Msg(i18n.T("No changes since export"))
		}
	}

	plan := merge.Reconcile(existing.Layout, units)
	err = android.WriteResource(path, plan, existing.Style())
	switch {
	case errors.Is(err, android.ErrNothingToWrite):
		l.Info().Msg(i18n.T("No translations, skipped"))
	case err != nil:
		l.Warn().Err(err).Msg(i18n.T("Write failed"))
	default:
		logSuccess(i18n.T("%s: %d strings -> %s"), lang, plan.Translatable(), relTo(m.Dir, path))
	}
}
