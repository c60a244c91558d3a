package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/xlsync/merge"
)

func TestExtract_UnionSortedRows(t *testing.T) {
	values := map[string]map[string]string{
		"en": {"greeting": "Hi"},
		"fr": {"greeting": "Salut", "farewell": "Au revoir"},
	}

	tbl := Extract([]string{"en", "fr"}, values)

	if diff := cmp.Diff([]string{"key", "en", "fr"}, tbl.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"farewell", "", "Au revoir"},
		{"greeting", "Hi", "Salut"},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_ArrayIndexesSortAsStrings(t *testing.T) {
	values := map[string]map[string]string{"en": {}}
	for _, k := range []string{"list,2", "list,10", "list,1", "list,0"} {
		values["en"][k] = k
	}

	tbl := Extract([]string{"en"}, values)

	// Plain string order: "list,10" lands between "list,1" and "list,2".
	want := []string{"list,0", "list,1", "list,10", "list,2"}
	if diff := cmp.Diff(want, tbl.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_Units(t *testing.T) {
	tbl := &Table{
		Header: []string{"key", "en", " fr ", "en"},
		Rows: [][]string{
			{"a", "A", "Á", "ignored"},
			{"", "orphan", "x"},
			{" b ", "B"},
			{"c", "", "Ç"},
		},
	}

	if diff := cmp.Diff([]string{"en", "fr"}, tbl.Languages()); diff != "" {
		t.Fatalf("Languages mismatch (-want +got):\n%s", diff)
	}

	want := []merge.Unit{{Key: "a", Text: "Á"}, {Key: "b", Text: ""}, {Key: "c", Text: "Ç"}}
	if diff := cmp.Diff(want, tbl.Units("fr")); diff != "" {
		t.Fatalf("Units(fr) mismatch (-want +got):\n%s", diff)
	}
	wantEn := []merge.Unit{{Key: "a", Text: "A"}, {Key: "b", Text: "B"}, {Key: "c", Text: ""}}
	if diff := cmp.Diff(wantEn, tbl.Units("en")); diff != "" {
		t.Fatalf("Units(en) mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Units("de"); got != nil {
		t.Fatalf("Units(de) = %v, want nil", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", XLSX, false},
		{"xlsx", XLSX, false},
		{".CSV", CSV, false},
		{"ods", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.err || got != tc.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q (err=%v)", tc.in, got, err, tc.want, tc.err)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q) error %v does not wrap ErrUnsupportedFormat", tc.in, err)
		}
	}
}

func TestFiles_RoundTrip(t *testing.T) {
	tbl := NewTable([]string{"en", "de"})
	tbl.AddRow("quote", `He said "hi", then left`, "Er sagte \"hallo\"")
	tbl.AddRow("multi", "line one\nline two", "")
	tbl.AddRow("only_en", "x")

	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "module"+ext)
			if err := WriteFile(path, tbl); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if diff := cmp.Diff(tbl.Header, got.Header); diff != "" {
				t.Fatalf("header mismatch (-want +got):\n%s", diff)
			}
			for _, lang := range []string{"en", "de"} {
				if diff := cmp.Diff(tbl.Units(lang), got.Units(lang)); diff != "" {
					t.Fatalf("Units(%s) mismatch (-want +got):\n%s", lang, diff)
				}
			}
		})
	}
}

func TestReadFile_CSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	data := "\xEF\xBB\xBFkey,en\nhello,Hello\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff([]string{"key", "en"}, tbl.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "x.ods"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
