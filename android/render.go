package android

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/xlsync/merge"
)

// ErrNothingToWrite is returned by WriteResource when the plan holds no
// translatable entries. Callers treat it as a skip, not a failure.
var ErrNothingToWrite = errors.New("no strings to write")

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Style carries what Render takes from the file being replaced.
type Style struct {
	// RootAttrs is written verbatim into the <resources> start tag.
	RootAttrs string
	// CDATA lists keys emitted as <![CDATA[...]]>.
	CDATA map[string]bool
	// Plain lists keys whose text is always escaped. Other keys keep
	// inline markup when it is a well-formed fragment.
	Plain map[string]bool
}

// Style returns the rendering style of r: its root attributes, its CDATA
// keys, and every key without inline markup as plain.
func (r *Resource) Style() Style {
	plain := make(map[string]bool, len(r.Values))
	for k := range r.Values {
		if !r.Markup[k] {
			plain[k] = true
		}
	}
	return Style{RootAttrs: r.RootAttrs, CDATA: r.CDATA, Plain: plain}
}

// WriteResource renders plan and writes it to path, creating parent
// directories as needed.
func WriteResource(path string, plan merge.Plan, st Style) error {
	if plan.Translatable() == 0 {
		return ErrNothingToWrite
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, Render(plan, st), 0644)
}

// Render produces strings.xml content for plan. The xliff namespace is
// declared when the text uses it and st.RootAttrs does not.
func Render(plan merge.Plan, st Style) []byte {
	root := st.RootAttrs
	if !strings.Contains(root, "xmlns:xliff=") && usesXliff(plan) {
		root += ` xmlns:xliff="` + xliffNamespace + `"`
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources" + root + ">\n")

	for _, a := range plan {
		switch a.Kind {
		case merge.ActionForeign:
			b.WriteString("    ")
			b.Write(a.Foreign.Payload)
			b.WriteString("\n")

		case merge.ActionScalar:
			fmt.Fprintf(&b, "    <string name=\"%s\">%s</string>\n",
				escapeAttr(a.Key), marshalStringValue(a.Key, a.Text, st))

		case merge.ActionOpenArray:
			fmt.Fprintf(&b, "    <string-array name=\"%s\">\n", escapeAttr(a.Name))

		case merge.ActionItem:
			fmt.Fprintf(&b, "        <item>%s</item>\n", marshalStringValue(a.Key, a.Text, st))

		case merge.ActionCloseArray:
			b.WriteString("    </string-array>\n")
		}
	}

	b.WriteString("</resources>\n")
	return []byte(b.String())
}

// marshalStringValue encodes the value of key for XML output.
// CDATA keys are wrapped in <![CDATA[...]]> and only apostrophes are
// escaped (Android AAPT requirement). Non-plain keys holding well-formed
// inline markup are written as is; everything else gets standard XML
// escaping plus Android apostrophe escaping.
func marshalStringValue(key, s string, st Style) string {
	switch {
	case st.CDATA[key]:
		return "<![CDATA[" + escapeAndroidApostrophe(s) + "]]>"
	case !st.Plain[key] && isMarkup(s):
		return escapeAndroidApostrophe(s)
	default:
		return escapeAndroidApostrophe(escapeText(s))
	}
}

func usesXliff(plan merge.Plan) bool {
	for _, a := range plan {
		if (a.Kind == merge.ActionScalar || a.Kind == merge.ActionItem) && strings.Contains(a.Text, "<xliff:") {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// isMarkup reports whether s holds inline elements and decodes as a
// well-formed XML fragment.
func isMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	dec := xml.NewDecoder(strings.NewReader("<v>" + s + "</v>"))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), `"`, "&quot;")
}

// escapeAndroidApostrophe escapes apostrophes for Android AAPT without
// double-escaping (strips any existing \' first, then re-escapes).
func escapeAndroidApostrophe(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// ---------------------------------------------------------------------------
// Resource directories
// ---------------------------------------------------------------------------

// ValuesDirName returns the res/ subdirectory holding a language's strings.
// The default language lives in "values", every other one in
// "values-<qualifier>" with the qualifier used verbatim (e.g. "pt-rBR").
func ValuesDirName(lang, defaultLang string) string {
	if lang == defaultLang {
		return "values"
	}
	return "values-" + lang
}

// ResourcePath returns the path of fileName for lang inside resDir.
func ResourcePath(resDir, lang, defaultLang, fileName string) string {
	return filepath.Join(resDir, ValuesDirName(lang, defaultLang), fileName)
}

// LanguageFromDir maps a values directory name to a language code.
// ok is false for directories that are not values directories.
func LanguageFromDir(dir, defaultLang string) (lang string, ok bool) {
	if dir == "values" {
		return defaultLang, true
	}
	if !strings.HasPrefix(dir, "values-") {
		return "", false
	}
	lang = strings.TrimPrefix(dir, "values-")
	return lang, lang != ""
}
