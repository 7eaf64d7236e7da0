package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// Classify
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		lang     string
		tz       string
		numeric  string
		regional bool
	}{
		{"strict both signals", PolicyStrict, "zh-CN", "Asia/Shanghai", "", true},
		{"strict english in shanghai", PolicyStrict, "en-US", "Asia/Shanghai", "", false},
		{"strict chinese abroad", PolicyStrict, "zh-CN", "America/New_York", "", false},
		{"strict ignores numeric locale", PolicyStrict, "en-US", "Asia/Shanghai", "zh-CN", false},
		{"strict taiwan language still zh", PolicyStrict, "zh-TW", "Asia/Urumqi", "", true},
		{"strict posix underscore tag", PolicyStrict, "zh_CN", "Asia/Harbin", "", true},

		{"majority all three", PolicyMajority, "zh-CN", "Asia/Shanghai", "zh-CN", true},
		{"majority language and timezone", PolicyMajority, "zh-CN", "Asia/Chongqing", "en-US", true},
		{"majority timezone and numeric", PolicyMajority, "en-US", "Asia/Shanghai", "zh-CN", true},
		{"majority language and numeric", PolicyMajority, "zh", "Europe/Berlin", "zh_CN.UTF-8", true},
		{"majority only timezone", PolicyMajority, "en-US", "Asia/Kashgar", "en-US", false},
		{"majority only language", PolicyMajority, "zh-CN", "America/New_York", "", false},
		{"majority nothing", PolicyMajority, "", "", "", false},

		{"unknown policy behaves strict", Policy("other"), "en-US", "Asia/Shanghai", "zh-CN", false},
		{"substring timezone match", PolicyStrict, "zh-CN", "posix/Asia/Shanghai", "", true},
		{"hong kong is not regional", PolicyStrict, "zh-HK", "Asia/Hong_Kong", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.policy, tc.lang, tc.tz, tc.numeric); got != tc.regional {
				t.Fatalf("Classify(%s, %q, %q, %q) = %v, want %v", tc.policy, tc.lang, tc.tz, tc.numeric, got, tc.regional)
			}
		})
	}
}

func TestPoliciesDisagreeOnMixedSignals(t *testing.T) {
	majority := Classify(PolicyMajority, "en", "Asia/Shanghai", "zh-CN")
	strict := Classify(PolicyStrict, "en", "Asia/Shanghai", "zh-CN")
	if !majority || strict {
		t.Fatalf("majority=%v strict=%v, want true/false", majority, strict)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"majority": PolicyMajority,
		" Strict ": PolicyStrict,
		"":         DefaultPolicy,
	} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("vote"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("ParsePolicy(vote) error = %v, want ErrUnknownPolicy", err)
	}
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LC_NUMERIC", "LANG", "TZ"} {
		t.Setenv(env, "")
	}
}

func withSystemPaths(t *testing.T, tzFile, link string) {
	t.Helper()
	oldFile, oldLink := timezoneFile, localtimeLink
	timezoneFile, localtimeLink = tzFile, link
	t.Cleanup(func() { timezoneFile, localtimeLink = oldFile, oldLink })
}

func TestDetectSignals(t *testing.T) {
	t.Run("environment variables", func(t *testing.T) {
		clearLocaleEnv(t)
		withSystemPaths(t, "/nonexistent", "/nonexistent")
		t.Setenv("LANG", "zh_CN.UTF-8")
		t.Setenv("LC_NUMERIC", "en_US.UTF-8")
		t.Setenv("TZ", ":Asia/Shanghai")

		got := DetectSignals()
		want := Signals{Language: "zh_CN", Timezone: "Asia/Shanghai", NumericLocale: "en_US"}
		if got != want {
			t.Fatalf("DetectSignals() = %#v, want %#v", got, want)
		}
		if !got.Classify(PolicyStrict) {
			t.Fatal("expected strict classification to be regional")
		}
	})

	t.Run("LC_ALL overrides numeric", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LC_ALL", "zh_CN.UTF-8")
		t.Setenv("LC_NUMERIC", "en_US.UTF-8")
		if got := detectNumericLocale(); got != "zh_CN" {
			t.Fatalf("detectNumericLocale() = %q, want zh_CN", got)
		}
	})

	t.Run("timezone file", func(t *testing.T) {
		clearLocaleEnv(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "timezone")
		if err := os.WriteFile(path, []byte("Asia/Urumqi\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		withSystemPaths(t, path, "/nonexistent")
		if got := detectTimezone(); got != "Asia/Urumqi" {
			t.Fatalf("detectTimezone() = %q, want Asia/Urumqi", got)
		}
	})

	t.Run("localtime symlink", func(t *testing.T) {
		clearLocaleEnv(t)
		dir := t.TempDir()
		link := filepath.Join(dir, "localtime")
		if err := os.Symlink("../usr/share/zoneinfo/Asia/Chongqing", link); err != nil {
			t.Skipf("symlink unsupported: %v", err)
		}
		withSystemPaths(t, filepath.Join(dir, "missing"), link)
		if got := detectTimezone(); got != "Asia/Chongqing" {
			t.Fatalf("detectTimezone() = %q, want Asia/Chongqing", got)
		}
	})
}
