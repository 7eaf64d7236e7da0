// Package settings stores the user's quicktrans preferences.
//
// Preferences live in the XDG data directory:
//
//	$XDG_DATA_HOME/quicktrans/prefs.json  (default: ~/.local/share/quicktrans/)
//
// The file mirrors what the browser extension keeps in its local storage:
//   - selectedText: the last text that was translated, so that a bare
//     "quicktrans translate" re-runs it
//   - phoneticType: "dj" or "ipa", the preferred phonetic notation
//
// File permissions are 0600 (owner read/write only).
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName = "quicktrans"
	fileName    = "prefs.json"
)

// Phonetic notation values stored in PhoneticType.
const (
	PhoneticDJ  = "dj"
	PhoneticIPA = "ipa"
)

// Prefs is the content of prefs.json.
type Prefs struct {
	SelectedText string `json:"selectedText,omitempty"`
	PhoneticType string `json:"phoneticType,omitempty"`
}

// EffectivePhoneticType returns PhoneticType, defaulting to "dj" for
// empty or unrecognized values like the extension does.
func (p Prefs) EffectivePhoneticType() string {
	if strings.EqualFold(p.PhoneticType, PhoneticIPA) {
		return PhoneticIPA
	}
	return PhoneticDJ
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for quicktrans.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the prefs.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the quicktrans data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads preferences from disk.
// Returns zero Prefs if the file doesn't exist or is invalid.
func Load() Prefs {
	path, err := filePath()
	if err != nil {
		return Prefs{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prefs{}
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}
	}
	return p
}

// Save writes preferences to disk with 0600 permissions.
func Save(p Prefs) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing prefs file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Field helpers
// ---------------------------------------------------------------------------

// SetSelectedText stores text as the last selection.
func SetSelectedText(text string) error {
	p := Load()
	p.SelectedText = text
	return Save(p)
}

// SetPhoneticType stores the preferred notation ("dj" or "ipa").
func SetPhoneticType(kind string) error {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != PhoneticDJ && kind != PhoneticIPA {
		return fmt.Errorf("invalid phonetic type %q (want %s or %s)", kind, PhoneticDJ, PhoneticIPA)
	}
	p := Load()
	p.PhoneticType = kind
	return Save(p)
}

// RemoveAll removes the preferences file.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing prefs file: %w", err)
	}
	return nil
}
