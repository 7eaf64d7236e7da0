// Package phonetic rewrites IPA transcriptions (as returned by dictionary
// services) into the notation shown under a translated word: either a
// cleaned-up British-leaning IPA, or the simplified DJ-style notation used
// in Chinese English-teaching material.
//
// Both pipelines are ordered lists of substitutions. Several later rules
// only work because earlier ones already removed ambiguous characters, so
// the order of every table in this file is significant.
package phonetic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Style selects the output notation.
type Style string

const (
	// StyleSimplified is the DJ-style teaching notation (no spaces, no
	// syllable marks, ASCII colon for length).
	StyleSimplified Style = "simplified"
	// StyleIPAClean keeps IPA but normalizes American variants toward
	// British symbols and strips delimiters.
	StyleIPAClean Style = "ipa-clean"
)

// ErrUnknownStyle is returned by ParseStyle for unrecognized names.
var ErrUnknownStyle = errors.New("unknown phonetic style")

// ParseStyle accepts the canonical style names plus the short aliases the
// extension stores in its preferences ("dj" and "ipa"). An empty name is
// the extension's default, DJ.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simplified", "dj", "":
		return StyleSimplified, nil
	case "ipa-clean", "ipa":
		return StyleIPAClean, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// Alias returns the short preference value for a style ("dj" or "ipa").
func (s Style) Alias() string {
	if s == StyleSimplified {
		return "dj"
	}
	return "ipa"
}

// SignalChars are the characters whose presence marks a string as real IPA.
// Callers hide the phonetic line entirely when none of them occur.
const SignalChars = "ˈˌɪʊʌæɔəθðʃʒŋːɑɒɛɜɡ"

// LooksLikeIPA reports whether s contains at least one of SignalChars.
func LooksLikeIPA(s string) bool {
	return strings.ContainsAny(s, SignalChars)
}

// Normalize rewrites ipa into the given style. It is total: empty input
// yields "", and an unknown style is treated as StyleIPAClean.
func Normalize(ipa string, style Style) string {
	if ipa == "" {
		return ""
	}
	if style == StyleSimplified {
		return simplify(ipa)
	}
	return clean(ipa)
}

// ---------------------------------------------------------------------------
// ipa-clean
// ---------------------------------------------------------------------------

type pair struct{ from, to string }

var delimiters = strings.NewReplacer("/", "", "[", "", "]", "")

// American-English IPA variants, rhotics and flap first, diphthongs after.
var cleanPre = []pair{
	{"ɹ", "r"},
	{"ɾ", "t"},
	{"ɝ", "ɜː"},
	{"ɚ", "ɜː"},
	{"oʊ", "əʊ"},
	{"ɡ", "g"},
}

var cleanPost = []pair{
	{"ʊr", "ʊə"},
	{"ər", "ə"},
}

var (
	repeatedLength = regexp.MustCompile(`ːː+`)
	whitespaceRun  = regexp.MustCompile(`[\s\p{Zs}]+`)
)

func clean(s string) string {
	s = delimiters.Replace(s)
	s = applyPairs(s, cleanPre)
	s = lengthenOpenO(s)
	s = applyPairs(s, cleanPost)
	s = repeatedLength.ReplaceAllString(s, "ː")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// lengthenOpenO turns every ɔ that is not already followed by ː into ɔː.
func lengthenOpenO(s string) string {
	if !strings.ContainsRune(s, 'ɔ') {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i, r := range runes {
		b.WriteRune(r)
		if r == 'ɔ' && (i+1 >= len(runes) || runes[i+1] != 'ː') {
			b.WriteRune('ː')
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// simplified (DJ)
// ---------------------------------------------------------------------------

// syllabic is the combining vertical line below (U+0329) marking l̩ n̩ m̩.
const syllabic = "\u0329"

var optionalSegment = regexp.MustCompile(`\(([^)]+)\)`)

// Syllabic consonants, bare and next to a syllable break.
var syllabicRules = []pair{
	{"l" + syllabic, "əl"},
	{"n" + syllabic, "ən"},
	{"m" + syllabic, "əm"},
	{".n" + syllabic, "ən"},
	{".l" + syllabic, "əl"},
	{".m" + syllabic, "əm"},
	{"n" + syllabic + ".", "ən"},
	{"l" + syllabic + ".", "əl"},
	{"m" + syllabic + ".", "əm"},
}

// Syllable-boundary clusters (invitation, button, little, ...).
var clusterRules = []pair{
	{".ʃn" + syllabic, "ʃən"},
	{".tn" + syllabic, "tən"},
	{".dn" + syllabic, "dən"},
	{".sn" + syllabic, "sən"},
	{".tl" + syllabic, "təl"},
	{".dl" + syllabic, "dəl"},
}

var symbolRules = []pair{
	{"ɹ", "r"},
	{"ɾ", "t"},
	{"ɘ", "i"},
	{"ɒ", "ɔ"},
	{"ɜː", "ə:"},
	{"ɜ", "ə"},
	{"ɡ", "g"},
	{"d\u0361ʒ", "ʤ"},
	{"dʒ", "ʤ"},
	{"t\u0361ʃ", "ʧ"},
	{"tʃ", "ʧ"},
	{"ʊ", "u"},
	{"ɪ", "i"},
	{"ɑː", "ɑ:"},
	{"ɔː", "ɔ:"},
	{"uː", "u:"},
	{"iː", "i:"},
	{"eɪ", "ei"},
	{"aɪ", "ai"},
	{"əʊ", "əu"},
	{"oʊ", "ou"},
	{"aʊ", "au"},
	{"ɔɪ", "ɔi"},
	{"juː", "ju:"},
	{"ɪə", "iə"},
	{"ʊə", "uə"},
	{"ɛ", "e"},
	{"ɫ", "l"},
}

var comboFixups = []pair{
	{"nɛ", "ne"},
	{"ɡɛ", "ge"},
	{"dɛ", "de"},
	{"tɛ", "te"},
}

var breaksAndDelimiters = strings.NewReplacer(".", "", "/", "", "[", "", "]", "")

func simplify(s string) string {
	s = optionalSegment.ReplaceAllString(s, "$1")
	s = applyPairs(s, syllabicRules)
	s = applyPairs(s, clusterRules)
	s = applyPairs(s, symbolRules)
	s = applyPairs(s, comboFixups)
	s = breaksAndDelimiters.Replace(s)
	return dropSpaces(s)
}

func dropSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func applyPairs(s string, rules []pair) string {
	for _, r := range rules {
		if strings.Contains(s, r.from) {
			s = strings.ReplaceAll(s, r.from, r.to)
		}
	}
	return s
}
