package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xlsync/config"
	"github.com/minios-linux/xlsync/htmlfile"
	"github.com/minios-linux/xlsync/i18n"
	"github.com/minios-linux/xlsync/sheet"
)

// ---------------------------------------------------------------------------
// html (per-language HTML document folders)
// ---------------------------------------------------------------------------

func newHTMLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "html",
		Short: "Export or import HTML documentation translations",
	}
	cmd.AddCommand(newHTMLExportCmd(), newHTMLImportCmd())
	return cmd
}

func newHTMLExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <html-dir>",
		Short: "Export each language folder of html-dir to a spreadsheet",
		Long: `html-dir holds one folder per language, each with .html files. Every
language becomes <output-dir>/<project>/html/<lang>.xlsx with one row per
file (file name, content).

The project name is taken from the path: for
<project>/<module>/src/main/assets/html it is <project>, otherwise the
name of html-dir's parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			htmlDir, err := requireDir(args[0], i18n.T("HTML path"))
			if err != nil {
				return err
			}
			s, err := resolveSettings(cmd, ".")
			if err != nil {
				return err
			}
			return runHTMLExport(htmlDir, s)
		},
	}
	cmd.Flags().Bool("remove-html-tags", false, "Strip HTML tags and keep only the text")
	return cmd
}

func newHTMLImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <html-dir>",
		Short: "Write spreadsheets back into html-dir's language folders",
		Long: `Read every <lang>.xlsx (or .csv) in <output-dir>/<project>/html and
write each row to html-dir/<lang>/<file name>. Literal \n, \t and \r in
cells are decoded. Empty cells leave the existing file untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			htmlDir, err := requireDir(args[0], i18n.T("HTML path"))
			if err != nil {
				return err
			}
			s, err := resolveSettings(cmd, ".")
			if err != nil {
				return err
			}
			return runHTMLImport(htmlDir, s)
		},
	}
}

// htmlOutputDir returns <output-dir>/<project>/html for an HTML root.
func htmlOutputDir(htmlDir string, s *config.Settings) string {
	return filepath.Join(s.OutputDir, htmlfile.ProjectName(htmlDir), "html")
}

func runHTMLExport(htmlDir string, s *config.Settings) error {
	outDir := htmlOutputDir(htmlDir, s)
	logInfo(i18n.T("Scanning HTML directory: %s"), htmlDir)
	logInfo(i18n.T("Output directory: %s"), outDir)
	log.Debug().Bool("remove_html_tags", s.RemoveHTMLTags).Send()

	done, empty, err := htmlfile.ExportDir(htmlDir, outDir, s.SheetFormat(), s.RemoveHTMLTags)
	for _, lang := range empty {
		log.Warn().Str("lang", lang).Msg(i18n.T("No HTML files found"))
	}
	if err != nil {
		return err
	}

	var langs []string
	for _, e := range done {
		for _, sk := range e.Skipped {
			log.Warn().Str("lang", e.Lang).Str("file", sk.Name).Err(sk.Err).Msg(i18n.T("Skipped file"))
		}
		logSuccess(i18n.N("%s: %d file -> %s", "%s: %d files -> %s", e.Docs), e.Lang, e.Docs, relTo(s.OutputDir, e.Path))
		langs = append(langs, e.Lang)
	}

	fmt.Fprintln(os.Stderr)
	logSuccess(i18n.T("Successfully exported HTML translations"))
	if len(langs) > 0 {
		logInfo(i18n.T("Languages: %s"), strings.Join(langs, ", "))
	}
	logInfo(i18n.T("Output location: %s"), outDir)
	return nil
}

func runHTMLImport(htmlDir string, s *config.Settings) error {
	inDir, err := requireDir(htmlOutputDir(htmlDir, s), i18n.T("HTML export directory"))
	if err != nil {
		return err
	}
	logInfo(i18n.T("Importing from: %s"), inDir)
	logInfo(i18n.T("Target HTML directory: %s"), htmlDir)

	files, err := htmlfile.SheetFiles(inDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf(i18n.T("no spreadsheets found in %s"), inDir)
	}

	ok := 0
	for _, path := range files {
		lang := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		l := log.With().Str("lang", lang).Logger()

		table, err := sheet.ReadFile(path)
		if err != nil {
			l.Warn().Err(err).Msg(i18n.T("Import failed"))
			continue
		}
		n, err := htmlfile.WriteDocuments(filepath.Join(htmlDir, lang), table)
		if err != nil {
			l.Warn().Err(err).Msg(i18n.T("Import failed"))
			continue
		}
		logSuccess(i18n.N("%s: %d file written", "%s: %d files written", n), lang, n)
		ok++
	}

	fmt.Fprintln(os.Stderr)
	logSuccess(i18n.T("Successfully imported %d/%d language(s)"), ok, len(files))
	return nil
}
