package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/xlsync/android"
	"github.com/minios-linux/xlsync/config"
	"github.com/minios-linux/xlsync/i18n"
	"github.com/minios-linux/xlsync/langmeta"
	"github.com/minios-linux/xlsync/lockfile"
)

// ---------------------------------------------------------------------------
// status (read-only: modules, languages, key counts)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [android-root]",
		Short: "Show modules, languages and key counts",
		Long: `Show the discovered Android modules with their languages and the
number of translatable keys and preserved (non-translatable) entries per
language. Keys missing compared to the default language are listed as gaps.
Does not modify any files.`,
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
			return runStatus(cmd.OutOrStdout(), root, s)
		},
	}

	return cmd
}

// langStats is one row of the status table.
type langStats struct {
	lang    string
	keys    int
	foreign int
	missing int
	broken  bool
}

func runStatus(out io.Writer, root string, s *config.Settings) error {
	modules, err := config.DiscoverModules(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n", i18n.T("Project"))
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "  %-18s %s\n", i18n.T("Root:"), root)
	fmt.Fprintf(out, "  %-18s %s\n", i18n.T("Default language:"), langmeta.Label(s.DefaultLanguage))
	fmt.Fprintf(out, "  %-18s %s\n", i18n.T("Output:"), projectOutputDir(root, s))
	if s.Source != "" {
		fmt.Fprintf(out, "  %-18s %s\n", i18n.T("Settings:"), s.Source)
	}

	for _, m := range modules {
		fmt.Fprintln(out)
		title := m.Name
		if s.Excluded(m.Name) {
			title += " " + i18n.T("(excluded)")
		}
		fmt.Fprintln(out, title)
		fmt.Fprintln(out, strings.Repeat("─", 60))

		stats, err := moduleStats(m, s)
		if err != nil {
			fmt.Fprintf(out, "  %v\n", err)
			continue
		}
		if len(stats) == 0 {
			fmt.Fprintf(out, "  %s\n", i18n.T("no languages"))
			continue
		}
		writeStatsTable(out, stats)
	}

	lock, err := lockfile.Load(projectOutputDir(root, s))
	if err == nil && lock.Exists() {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s\n", i18n.T("Last export:"), lock.Summary())
	}
	fmt.Fprintln(out)
	return nil
}

// moduleStats reads every language of a module. Gaps are counted against
// the default language.
func moduleStats(m config.Module, s *config.Settings) ([]langStats, error) {
	langs, err := config.ModuleLanguages(m.ResDir(), s.DefaultLanguage, s.ResourceFile)
	if err != nil {
		return nil, err
	}

	var base map[string]string
	stats := make([]langStats, 0, len(langs))
	resources := make([]*android.Resource, 0, len(langs))
	for _, l := range langs {
		r, err := android.ReadResource(l.Path)
		stats = append(stats, langStats{lang: l.Code, keys: r.Len(), foreign: len(r.Foreign), broken: err != nil})
		resources = append(resources, r)
		if l.Code == s.DefaultLanguage {
			base = r.Values
		}
	}

	for i, r := range resources {
		for k := range base {
			if _, ok := r.Values[k]; !ok {
				stats[i].missing++
			}
		}
	}
	return stats, nil
}

func writeStatsTable(out io.Writer, stats []langStats) {
	width := len("Language")
	labels := make([]string, len(stats))
	for i, st := range stats {
		labels[i] = langmeta.Label(st.lang)
		if w := len([]rune(labels[i])); w > width {
			width = w
		}
	}

	fmt.Fprintf(out, "  %s  %6s  %8s  %7s\n", pad(i18n.T("Language"), width), i18n.T("Keys"), i18n.T("Foreign"), i18n.T("Missing"))
	for i, st := range stats {
		if st.broken {
			fmt.Fprintf(out, "  %s  %s\n", pad(labels[i], width), i18n.T("unreadable"))
			continue
		}
		fmt.Fprintf(out, "  %s  %6d  %8d  %7d\n", pad(labels[i], width), st.keys, st.foreign, st.missing)
	}
}

// pad right-pads s to width runes.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
