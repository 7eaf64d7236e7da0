// Package locale decides whether a user should be treated as a mainland
// China user, which selects a different translation provider chain (some
// global endpoints are unreliable from inside the region).
//
// Two policies exist and they disagree on mixed signals, so both are kept
// and the caller picks one:
//
//   - majority: at least two of language, timezone and numeric locale
//     point to China;
//   - strict: both language and timezone point to China; the numeric
//     locale is ignored.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minios-linux/quicktrans/langmeta"
)

// Policy names a classification strategy.
type Policy string

const (
	PolicyMajority Policy = "majority"
	PolicyStrict   Policy = "strict"
)

// DefaultPolicy is used when the integration layer does not pick one.
const DefaultPolicy = PolicyStrict

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("unknown locale policy")

// ParsePolicy resolves a policy name. An empty name yields DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultPolicy, nil
	case PolicyMajority:
		return PolicyMajority, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownPolicy, name, PolicyMajority, PolicyStrict)
}

// RegionalTimezones are the zone identifiers that count as mainland China.
var RegionalTimezones = []string{
	"Asia/Shanghai",
	"Asia/Urumqi",
	"Asia/Harbin",
	"Asia/Chongqing",
	"Asia/Kashgar",
}

// Classify is a pure function of the three signals. Unknown policies
// classify as strict.
func Classify(policy Policy, languageTag, timezoneID, numericLocale string) bool {
	lang := IsChineseLanguage(languageTag)
	tz := IsRegionalTimezone(timezoneID)

	if policy == PolicyMajority {
		votes := 0
		for _, v := range []bool{lang, tz, IsRegionalNumericLocale(numericLocale)} {
			if v {
				votes++
			}
		}
		return votes >= 2
	}
	return lang && tz
}

// IsChineseLanguage reports whether the language tag starts with "zh".
func IsChineseLanguage(tag string) bool {
	return strings.HasPrefix(langmeta.Canonicalize(tag), "zh")
}

// IsRegionalTimezone reports whether the zone names one of RegionalTimezones.
// The match is a substring match so that paths such as
// "posix/Asia/Shanghai" resolved from /etc/localtime also count.
func IsRegionalTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	for _, zone := range RegionalTimezones {
		if strings.Contains(tz, zone) {
			return true
		}
	}
	return false
}

// IsRegionalNumericLocale reports whether the numeric-formatting locale is
// zh-CN. POSIX spellings such as "zh_CN.UTF-8" are accepted.
func IsRegionalNumericLocale(loc string) bool {
	if idx := strings.IndexByte(loc, '.'); idx >= 0 {
		loc = loc[:idx]
	}
	return strings.Contains(langmeta.Canonicalize(loc), "zh-CN")
}
