// Package i18n translates the quicktrans CLI's own messages.
//
// Most quicktrans users read Chinese, so the command help, log lines and
// bench table headers ship with a zh_CN catalog embedded in the binary.
// Translated text coming back from providers never passes through here.
//
// The same environment lookup also feeds the locale classifier: the
// language that picks the catalog is the language signal that votes on
// the regional provider chain.
//
//	i18n.Init("")                      // LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	logError(i18n.T("Translation failed"))
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales holds locales/zh_CN/LC_MESSAGES/quicktrans.po.
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for the CLI catalog.
const domain = "quicktrans"

var po *gotext.Locale

// Init loads the catalog for lang, or for DetectLanguage() when lang is
// empty. Languages without a catalog (including English) pass msgids
// through unchanged. Call it once from main before building commands.
func Init(lang string) {
	if lang == "" {
		lang = DetectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a CLI message, returning msgid when there is no entry.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a counted message. zh_CN has a single plural form.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// DetectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions. The locale
// classifier uses the same value as its language signal.
func DetectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "zh_CN.UTF-8" -> "zh_CN")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// "C" and "POSIX" mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
