// Package htmlfile handles the HTML variant of the sync: a directory with
// one subdirectory per language, each holding standalone .html documents.
//
// Export turns one language directory into a two-column table (file name,
// content). Import writes each row of such a table back as a file.
package htmlfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/minios-linux/xlsync/sheet"
)

// Document is one HTML file of one language.
type Document struct {
	Name    string // base file name, e.g. "about.html"
	Content string
}

// Skipped records a file that could not be read during export.
type Skipped struct {
	Name string
	Err  error
}

// Languages returns the names of the language subdirectories of root,
// sorted.
func Languages(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// ReadDir reads the .html files of one language directory in name order.
// Content is trimmed, and with stripTags set reduced to its text. Files
// that cannot be read are reported in skipped and left out.
func ReadDir(dir string, stripTags bool) (docs []Document, skipped []Skipped, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".html" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, Skipped{Name: name, Err: err})
			continue
		}
		content := string(data)
		if stripTags {
			content, err = StripTags(content)
			if err != nil {
				skipped = append(skipped, Skipped{Name: name, Err: err})
				continue
			}
		}
		docs = append(docs, Document{Name: name, Content: strings.TrimSpace(content)})
	}
	return docs, skipped, nil
}

// StripTags removes all tags, comments and doctype declarations from s
// and keeps the text between them as written, entities included.
func StripTags(s string) (string, error) {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return b.String(), nil
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// Table builds the export table for one language.
func Table(lang string, docs []Document) *sheet.Table {
	t := sheet.NewTable([]string{lang})
	for _, d := range docs {
		t.AddRow(d.Name, d.Content)
	}
	return t
}

// WriteDocuments writes the rows of t into dir, one file per row named by
// the row key. The content comes from the first language column. Literal
// \n, \t and \r sequences are decoded. Rows with empty content are
// skipped, so a blank cell never deletes or truncates a file.
func WriteDocuments(dir string, t *sheet.Table) (written int, err error) {
	langs := t.Languages()
	if len(langs) == 0 {
		return 0, fmt.Errorf("table has no content column")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, u := range t.Units(langs[0]) {
		name := filepath.Base(u.Key)
		if u.Text == "" || name == "." || name == ".." || name == string(filepath.Separator) {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(DecodeEscapes(u.Text)), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

var escapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r")

// DecodeEscapes turns the two-character sequences \n, \t and \r into the
// characters they name.
func DecodeEscapes(s string) string {
	return escapes.Replace(s)
}

// ProjectName infers the project a HTML directory belongs to. For the
// usual <project>/<module>/src/main/assets/html layout it is the path
// component four levels above "assets"; otherwise it is the name of the
// directory's parent.
func ProjectName(htmlDir string) string {
	clean := filepath.Clean(htmlDir)
	parts := strings.Split(filepath.ToSlash(clean), "/")
	for i, p := range parts {
		if p != "assets" {
			continue
		}
		if i >= 4 && parts[i-4] != "" {
			return parts[i-4]
		}
		return filepath.Base(ancestor(clean, 4))
	}
	return filepath.Base(filepath.Dir(clean))
}

func ancestor(path string, n int) string {
	for i := 0; i < n; i++ {
		path = filepath.Dir(path)
	}
	return path
}

// hasHTML reports whether dir directly contains a .html file.
func hasHTML(dir string) bool {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.html"))
	return len(matches) > 0
}

// Exported is one language that was written out by ExportDir.
type Exported struct {
	Lang    string
	Path    string
	Docs    int
	Skipped []Skipped
}

// ExportDir exports every language of root into outDir as
// <lang><format ext>. Language directories without .html files are
// returned in empty and produce no file.
func ExportDir(root, outDir string, format sheet.Format, stripTags bool) (done []Exported, empty []string, err error) {
	langs, err := Languages(root)
	if err != nil {
		return nil, nil, err
	}
	if len(langs) == 0 {
		return nil, nil, fmt.Errorf("no language directories found in %s", root)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	for _, lang := range langs {
		dir := filepath.Join(root, lang)
		if !hasHTML(dir) {
			empty = append(empty, lang)
			continue
		}
		docs, skipped, err := ReadDir(dir, stripTags)
		if err != nil {
			return done, empty, fmt.Errorf("reading %s: %w", dir, err)
		}
		path := filepath.Join(outDir, lang+format.Ext())
		if err := sheet.WriteFile(path, Table(lang, docs)); err != nil {
			return done, empty, fmt.Errorf("writing %s: %w", path, err)
		}
		done = append(done, Exported{Lang: lang, Path: path, Docs: len(docs), Skipped: skipped})
	}
	return done, empty, nil
}

// SheetFiles lists the .xlsx and .csv files of dir, sorted. When both
// formats exist for a language the .xlsx file wins.
func SheetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	byLang := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := sheet.FormatOf(e.Name())
		if err != nil {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if prev, ok := byLang[lang]; ok && f == sheet.CSV && strings.EqualFold(filepath.Ext(prev), ".xlsx") {
			continue
		}
		byLang[lang] = filepath.Join(dir, e.Name())
	}
	files := make([]string, 0, len(byLang))
	for _, p := range byLang {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}
