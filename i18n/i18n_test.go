package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestAvailableListsEmbeddedCatalogs(t *testing.T) {
	langs := Available()
	want := map[string]bool{"de": false, "ru": false}
	for _, l := range langs {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for l, found := range want {
		if !found {
			t.Fatalf("Available() = %v, missing %q", langs, l)
		}
	}
}

func TestInitLoadsCatalog(t *testing.T) {
	old, oldLang := po, current
	t.Cleanup(func() { po, current = old, oldLang })

	Init("de_DE")
	if got := Language(); got != "de_DE" {
		t.Fatalf("Language() = %q, want %q", got, "de_DE")
	}
	if got := T("Module: %s"); got != "Modul: %s" {
		t.Fatalf("T = %q, want %q", got, "Modul: %s")
	}
	if got := N("Found %d module:", "Found %d modules:", 3); got != "%d Module gefunden:" {
		t.Fatalf("N plural = %q", got)
	}
}

func TestInitUnknownLanguageFallsBack(t *testing.T) {
	old, oldLang := po, current
	t.Cleanup(func() { po, current = old, oldLang })

	Init("xx")
	if got := T("Module: %s"); got != "Module: %s" {
		t.Fatalf("T = %q, want untranslated", got)
	}
	if got := N("Found %d module:", "Found %d modules:", 1); got != "Found %d module:" {
		t.Fatalf("N singular = %q", got)
	}
}
