package locale

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minios-linux/quicktrans/i18n"
)

// Signals are the three environment indicators the classifier votes on.
type Signals struct {
	Language      string `json:"language"`
	Timezone      string `json:"timezone"`
	NumericLocale string `json:"numericLocale"`
}

// Classify applies the package-level Classify to the signals.
func (s Signals) Classify(policy Policy) bool {
	return Classify(policy, s.Language, s.Timezone, s.NumericLocale)
}

// Paths consulted when TZ is unset. Tests point these at temp files.
var (
	timezoneFile  = "/etc/timezone"
	localtimeLink = "/etc/localtime"
)

// DetectSignals reads the process environment the way a desktop session
// exposes it.
func DetectSignals() Signals {
	return Signals{
		Language:      i18n.DetectLanguage(),
		Timezone:      detectTimezone(),
		NumericLocale: detectNumericLocale(),
	}
}

func detectTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		return tz
	}
	if data, err := os.ReadFile(timezoneFile); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if target, err := os.Readlink(localtimeLink); err == nil {
		// e.g. ../usr/share/zoneinfo/Asia/Shanghai
		if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
			return target[idx+len("zoneinfo/"):]
		}
		return filepath.Base(target)
	}
	return time.Local.String()
}

// detectNumericLocale follows the POSIX precedence for LC_NUMERIC.
func detectNumericLocale() string {
	for _, env := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		val := os.Getenv(env)
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return ""
}
