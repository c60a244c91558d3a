package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "pt-rBR", want: "pt-BR"},
		{in: "zh-rTW", want: "zh-TW"},
		{in: "b+sr+Latn", want: "sr-Latn"},
		{in: "iw", want: "he"},
		{in: "in-rID", want: "id-ID"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		got := Resolve("en-GB")
		if got.Name != "English (UK)" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("android qualifier", func(t *testing.T) {
		got := Resolve("pt-rBR")
		if got.Name != "Português (Brasil)" || got.Flag != "🇧🇷" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		got := Resolve("fr-rLU")
		if got.Name != "Français" || got.Flag != "🇫🇷" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("zz-ZZ")
		if got.Name != "zz-ZZ" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestLabel(t *testing.T) {
	if got := Label("ru"); got != "Русский (ru)" {
		t.Fatalf("Label(ru) = %q", got)
	}
	if got := Label("xx"); got != "xx" {
		t.Fatalf("Label(xx) = %q", got)
	}
}
