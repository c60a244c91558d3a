// Package android reads Android strings.xml resources into the ordered key
// layout used by merge, and renders a merge.Plan back into strings.xml.
//
// Translatable resource types:
//   - <string>: a single value, keyed "name"
//   - <string-array>: ordered items, keyed "name,0", "name,1", ...
//
// Every other top-level element, and any element marked
// translatable="false", is foreign: it is kept as raw bytes and written back
// verbatim.
package android

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/minios-linux/xlsync/merge"
)

// ErrMalformed is returned (wrapped) when a file cannot be parsed or does
// not have exactly one <resources> root. The accompanying Resource is empty.
var ErrMalformed = errors.New("malformed resource file")

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Resource is a parsed strings.xml file.
type Resource struct {
	merge.Layout

	// Values maps each key in Order to its text, trimmed and with Android
	// apostrophe escapes removed.
	Values map[string]string
	// CDATA holds the keys whose source text was wrapped in <![CDATA[...]]>.
	CDATA map[string]bool
	// Markup holds the keys whose source text had inline elements. Their
	// Values are kept as escaped markup.
	Markup map[string]bool
	// RootAttrs is the attribute text of the <resources> start tag as
	// written, with a leading space, e.g. ` xmlns:tools="..."`.
	RootAttrs string
}

func newResource() *Resource {
	return &Resource{
		Values: make(map[string]string),
		CDATA:  make(map[string]bool),
		Markup: make(map[string]bool),
	}
}

// Len returns the number of translatable keys.
func (r *Resource) Len() int { return len(r.Order) }

// Units returns the translations in file order.
func (r *Resource) Units() []merge.Unit {
	units := make([]merge.Unit, 0, len(r.Order))
	for _, k := range r.Order {
		units = append(units, merge.Unit{Key: k, Text: r.Values[k]})
	}
	return units
}

func (r *Resource) add(key, text string, slot int) {
	if _, dup := r.Values[key]; !dup {
		r.Order = append(r.Order, key)
		r.Slots = append(r.Slots, slot)
	}
	r.Values[key] = text
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ReadResource reads and parses a strings.xml file. A missing file yields an
// empty Resource and no error: that is the normal state of a language that
// has not been translated yet.
func ReadResource(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newResource(), nil
		}
		return newResource(), fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return r, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse parses strings.xml data. On failure it returns an empty Resource
// together with an error wrapping ErrMalformed.
func Parse(data []byte) (*Resource, error) {
	r := newResource()
	dec := xml.NewDecoder(bytes.NewReader(data))
	roots := 0

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return newResource(), fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		roots++
		if start.Name.Local != "resources" {
			return newResource(), fmt.Errorf("%w: unexpected root <%s>", ErrMalformed, start.Name.Local)
		}
		if roots > 1 {
			return newResource(), fmt.Errorf("%w: more than one <resources> element", ErrMalformed)
		}
		r.RootAttrs = rootAttrs(data[off:dec.InputOffset()])
		if err := parseResources(dec, data, r); err != nil {
			return newResource(), fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if roots == 0 {
		return newResource(), fmt.Errorf("%w: no <resources> element", ErrMalformed)
	}
	return r, nil
}

var cdataOpen = []byte("<![CDATA[")

// parseResources walks the children of an opened <resources> element.
// The decoder offset before each token is the start of that token, which
// lets foreign elements be sliced out of data verbatim.
func parseResources(dec *xml.Decoder, data []byte, r *Resource) error {
	position := 0
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.EndElement:
			return nil

		case xml.StartElement:
			name, hasName, translatable := parseAttrs(t)
			kind := t.Name.Local
			if t.Name.Space != "" || !hasName || !translatable || (kind != "string" && kind != "string-array") {
				if err := dec.Skip(); err != nil {
					return err
				}
				end := dec.InputOffset()
				r.Foreign = append(r.Foreign, merge.Foreign{
					Position: position,
					Key:      name,
					Payload:  bytes.Clone(data[off:end]),
				})
				position++
				continue
			}

			if kind == "string" {
				text, markup, err := readElementContent(dec)
				if err != nil {
					return fmt.Errorf("reading <string name=%q>: %w", name, err)
				}
				r.add(name, strings.TrimSpace(text), position)
				r.Markup[name] = markup
				if bytes.Contains(data[off:dec.InputOffset()], cdataOpen) {
					r.CDATA[name] = true
				}
			} else if err := parseStringArray(dec, data, r, name, position); err != nil {
				return err
			}
			position++
		}
	}
}

// parseStringArray reads the <item> children of an opened <string-array>.
func parseStringArray(dec *xml.Decoder, data []byte, r *Resource, name string, slot int) error {
	idx := 0
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading <string-array name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if t.Name.Local != "item" {
				if err := dec.Skip(); err != nil {
					return err
				}
				continue
			}
			text, markup, err := readElementContent(dec)
			if err != nil {
				return fmt.Errorf("reading <item> in <string-array name=%q>: %w", name, err)
			}
			key := merge.ItemKey(name, idx)
			r.add(key, strings.TrimSpace(text), slot)
			r.Markup[key] = markup
			if bytes.Contains(data[off:dec.InputOffset()], cdataOpen) {
				r.CDATA[key] = true
			}
			idx++
		}
	}
}

// parseAttrs extracts name and translatable from a start element.
func parseAttrs(elem xml.StartElement) (name string, hasName, translatable bool) {
	translatable = true
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			if attr.Name.Space == "" {
				name, hasName = attr.Value, true
			}
		case "translatable":
			if strings.EqualFold(strings.TrimSpace(attr.Value), "false") {
				translatable = false
			}
		}
	}
	return
}

// readElementContent reads the inner content of an element up to its
// matching close tag. Inline child elements (e.g. <b>, <xliff:g>) are
// reconstructed as markup so they survive the round trip; when markup is
// present the surrounding text stays XML-escaped as well and markup is true.
func readElementContent(dec *xml.Decoder) (text string, markup bool, err error) {
	var plain, raw strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", false, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			s := unescapeAndroidApostrophe(string(t))
			plain.WriteString(s)
			raw.WriteString(escapeText(s))
		case xml.StartElement:
			depth++
			markup = true
			raw.WriteString("<")
			writeName(&raw, t.Name)
			for _, attr := range t.Attr {
				raw.WriteString(" ")
				writeName(&raw, attr.Name)
				raw.WriteString(`="`)
				raw.WriteString(escapeAttr(attr.Value))
				raw.WriteString(`"`)
			}
			raw.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				raw.WriteString("</")
				writeName(&raw, t.Name)
				raw.WriteString(">")
			}
		}
	}
	if markup {
		return raw.String(), true, nil
	}
	return plain.String(), false, nil
}

// writeName writes a possibly prefixed element or attribute name. The
// decoder resolves known prefixes to namespace URLs; strings.xml only uses
// the conventional xliff prefix, so it is restored by URL.
func writeName(b *strings.Builder, n xml.Name) {
	switch {
	case n.Space == "":
	case n.Space == xliffNamespace:
		b.WriteString("xliff:")
	case strings.Contains(n.Space, "/"):
		// unknown namespace URL, keep the local name only
	default:
		b.WriteString(n.Space)
		b.WriteString(":")
	}
	b.WriteString(n.Local)
}

const xliffNamespace = "urn:oasis:names:tc:xliff:document:1.2"

// rootAttrs returns the attribute text of a raw start tag such as
// `<resources xmlns:tools="...">`, with a leading space, or "".
func rootAttrs(tag []byte) string {
	s := strings.TrimSpace(string(tag))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	s = strings.TrimSuffix(s, "/")
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	attrs := strings.TrimSpace(s[i:])
	if attrs == "" {
		return ""
	}
	return " " + attrs
}

// unescapeAndroidApostrophe converts Android-escaped apostrophes (\') to
// plain apostrophes so translators see natural text.
func unescapeAndroidApostrophe(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}
