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
		t.Setenv("LANGUAGE", "zh_CN.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := DetectLanguage(); got != "zh_CN" {
			t.Fatalf("DetectLanguage() = %q, want %q", got, "zh_CN")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "en_GB.UTF-8")

		if got := DetectLanguage(); got != "en_GB" {
			t.Fatalf("DetectLanguage() = %q, want %q", got, "en_GB")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := DetectLanguage(); got != "en" {
			t.Fatalf("DetectLanguage() = %q, want %q", got, "en")
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

func TestInitLoadsEmbeddedChineseCatalog(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("zh_CN")
	if got := T("Translation failed"); got != "翻译失败" {
		t.Fatalf("T(zh_CN) = %q, want %q", got, "翻译失败")
	}

	Init("en")
	if got := T("Translation failed"); got != "Translation failed" {
		t.Fatalf("T(en) = %q, want passthrough", got)
	}
}
