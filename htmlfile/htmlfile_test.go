package htmlfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/xlsync/sheet"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"doctype and comment", "<!DOCTYPE html><!-- c --><h1>Title</h1>", "Title"},
		{"entities kept", "<p>Tom &amp; Jerry</p>", "Tom &amp; Jerry"},
		{"attributes", `<a href="x.html" title="a>b">link</a>`, "link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripTags(tt.in)
			if err != nil {
				t.Fatalf("StripTags: %v", err)
			}
			if got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.html"), "\n  <p>Second</p>\n")
	writeFile(t, filepath.Join(dir, "a.html"), "<h1>First</h1>")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	docs, skipped, err := ReadDir(dir, false)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v", skipped)
	}
	want := []Document{
		{Name: "a.html", Content: "<h1>First</h1>"},
		{Name: "b.html", Content: "<p>Second</p>"},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("docs mismatch (-want +got):\n%s", diff)
	}

	docs, _, err = ReadDir(dir, true)
	if err != nil {
		t.Fatalf("ReadDir strip: %v", err)
	}
	if docs[0].Content != "First" || docs[1].Content != "Second" {
		t.Fatalf("stripped docs = %+v", docs)
	}
}

func TestWriteDocuments(t *testing.T) {
	tbl := sheet.NewTable([]string{"de"})
	tbl.AddRow("about.html", `<p>Zeile 1\nZeile 2</p>`)
	tbl.AddRow("empty.html", "")
	tbl.AddRow("../escape.html", "kept inside")

	dir := filepath.Join(t.TempDir(), "de")
	writeFile(t, filepath.Join(dir, "empty.html"), "original")

	n, err := WriteDocuments(dir, tbl)
	if err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}
	if n != 2 {
		t.Fatalf("written = %d, want 2", n)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "about.html"))
	if string(data) != "<p>Zeile 1\nZeile 2</p>" {
		t.Errorf("about.html = %q", data)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "empty.html"))
	if string(data) != "original" {
		t.Errorf("blank cell overwrote empty.html: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.html")); err != nil {
		t.Errorf("escape.html should be written inside dir: %v", err)
	}
}

func TestDecodeEscapes(t *testing.T) {
	if got := DecodeEscapes(`a\nb\tc\rd`); got != "a\nb\tc\rd" {
		t.Fatalf("DecodeEscapes = %q", got)
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/work/MyProject/app/src/main/assets/html", "MyProject"},
		{"/work/MyProject/docs/html", "docs"},
		{"/x/src/main/assets/html", "x"},
	}
	for _, tt := range tests {
		if got := ProjectName(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("ProjectName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExportDirAndImportRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "index.html"), "<p>Hello</p>")
	writeFile(t, filepath.Join(root, "ru", "index.html"), "<p>Привет</p>")
	if err := os.MkdirAll(filepath.Join(root, "fr"), 0755); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	done, empty, err := ExportDir(root, out, sheet.CSV, false)
	if err != nil {
		t.Fatalf("ExportDir: %v", err)
	}
	if len(done) != 2 || done[0].Lang != "en" || done[1].Lang != "ru" {
		t.Fatalf("done = %+v", done)
	}
	if diff := cmp.Diff([]string{"fr"}, empty); diff != "" {
		t.Fatalf("empty mismatch (-want +got):\n%s", diff)
	}

	files, err := SheetFiles(out)
	if err != nil {
		t.Fatalf("SheetFiles: %v", err)
	}
	want := []string{filepath.Join(out, "en.csv"), filepath.Join(out, "ru.csv")}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("SheetFiles mismatch (-want +got):\n%s", diff)
	}

	tbl, err := sheet.ReadFile(files[1])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	target := t.TempDir()
	if _, err := WriteDocuments(filepath.Join(target, "ru"), tbl); err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(target, "ru", "index.html"))
	if string(data) != "<p>Привет</p>" {
		t.Fatalf("index.html = %q", data)
	}
}
