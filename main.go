// xlsync synchronizes Android string resources and HTML documents with
// translator spreadsheets.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xlsync/config"
	"github.com/minios-linux/xlsync/i18n"
	"github.com/minios-linux/xlsync/sheet"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorGray   = "\033[0;90m"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// setupLogging routes the global zerolog logger to out with the
// [INFO]/[OK]/[WARN]/[ERROR] tags used throughout the CLI.
func setupLogging(out io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	noColor := !isTerminal(out)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      noColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
		FormatLevel:  levelTag(noColor),
	}).Level(level)
}

func levelTag(noColor bool) zerolog.Formatter {
	return func(i any) string {
		tag, color := "[OK]", colorGreen
		if s, ok := i.(string); ok {
			switch s {
			case zerolog.LevelDebugValue:
				tag, color = "[DEBUG]", colorGray
			case zerolog.LevelInfoValue:
				tag, color = "[INFO]", colorBlue
			case zerolog.LevelWarnValue:
				tag, color = "[WARN]", colorYellow
			case zerolog.LevelErrorValue, zerolog.LevelFatalValue:
				tag, color = "[ERROR]", colorRed
			}
		}
		if noColor {
			return tag
		}
		return color + tag + colorReset
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// logSuccess logs without a level so the formatter prints [OK].
func logSuccess(format string, args ...any) {
	log.Log().Msgf(format, args...)
}

func logWarning(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func logError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

// options holds the persistent flags shared by all subcommands.
type options struct {
	outputDir       string
	defaultLanguage string
	format          string
	verbose         bool
}

var opts options

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlsync",
		Short: "Sync Android strings and HTML docs with translator spreadsheets",
		Long: `xlsync - exchange translations with translators through spreadsheets.

Exports every Android module's strings.xml files into one spreadsheet per
module (one row per key, one column per language), and imports edited
spreadsheets back without disturbing the layout of the resource files:
key order, non-translatable entries and string arrays are preserved.
HTML documentation folders (one folder per language) are supported too.

Commands:
  strings export   Android resources -> spreadsheets
  strings import   spreadsheets -> Android resources
  html export      HTML folders -> spreadsheets
  html import      spreadsheets -> HTML folders
  status           Show modules, languages and key counts

Settings are read from .xlsync.yaml in the project root, from XLSYNC_*
environment variables (a .env file is honored) and from flags, flags
taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(os.Stderr, opts.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory for exported spreadsheets")
	pf.StringVarP(&opts.defaultLanguage, "default-language", "l", config.DefaultLanguage, "Language stored in the plain values folder")
	pf.StringVarP(&opts.format, "format", "f", string(sheet.XLSX), "Spreadsheet format: xlsx or csv")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newStringsCmd(),
		newHTMLCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	setupLogging(os.Stderr, false)
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date and bundled UI languages.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "xlsync version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			if langs := i18n.Available(); len(langs) > 0 {
				fmt.Fprintf(out, "  ui langs:  %s\n", strings.Join(langs, ", "))
			}
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// resolveSettings loads the project settings for root and applies the
// flags the user set explicitly.
func resolveSettings(cmd *cobra.Command, root string) (*config.Settings, error) {
	s, err := config.LoadSettings(root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		s.OutputDir = opts.outputDir
	}
	if flags.Changed("default-language") {
		s.DefaultLanguage = opts.defaultLanguage
	}
	if flags.Changed("format") {
		s.Format = opts.format
	}
	if f := flags.Lookup("remove-html-tags"); f != nil && f.Changed {
		s.RemoveHTMLTags, _ = flags.GetBool("remove-html-tags")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.Source != "" {
		log.Debug().Str("file", s.Source).Msg(i18n.T("Loaded settings"))
	}
	return s, nil
}

// requireDir returns the absolute path of dir, failing when it is not an
// existing directory.
func requireDir(dir, what string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf(i18n.T("%s does not exist: %s"), what, dir)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf(i18n.T("%s is not a directory: %s"), what, dir)
	}
	return abs, nil
}

// rootArg returns the first positional argument or ".".
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// relTo returns path relative to base when possible.
func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
