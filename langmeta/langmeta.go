// Package langmeta provides language display metadata (native names and
// emoji flags) for the source and target languages shown in the CLI and
// returned by the host.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// Registry holds the languages the translator deals with directly.
// Anything else is resolved through x/text display names in Resolve().
var Registry = map[string]Meta{
	"en":    {Name: "English", Flag: "🇺🇸"},
	"en-GB": {Name: "English (UK)", Flag: "🇬🇧"},
	"en-US": {Name: "English (US)", Flag: "🇺🇸"},
	"zh":    {Name: "中文", Flag: "🇨🇳"},
	"zh-CN": {Name: "简体中文", Flag: "🇨🇳"},
	"zh-TW": {Name: "繁體中文", Flag: "🇹🇼"},
	"zh-HK": {Name: "繁體中文 (香港)", Flag: "🇭🇰"},
}

// Source and Target are the fixed translation direction.
var (
	Source = language.English
	Target = language.SimplifiedChinese
)

// Canonicalize normalizes locale spellings: "zh_cn" and " ZH-cn " both
// become "zh-CN". Encoding suffixes are left alone.
func Canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like zh_CN, zh-CN, and base-language fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := Canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	if tag, err := language.Parse(normalized); err == nil {
		if name := display.Self.Name(tag); name != "" {
			return Meta{Name: name}
		}
	}
	return Meta{Name: lang, Flag: ""}
}

// Tag returns the canonical BCP 47 form of a tag, or "" if it does not parse.
func Tag(lang string) string {
	tag, err := language.Parse(Canonicalize(lang))
	if err != nil {
		return ""
	}
	return tag.String()
}
