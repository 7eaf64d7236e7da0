package translate

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/quicktrans/dictionary"
	"github.com/minios-linux/quicktrans/phonetic"
)

// Dictionary supplies pronunciation data for a word.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (dictionary.Entry, error)
}

// WithDictionary enables the pronunciation half of Lookup.
func WithDictionary(d Dictionary) Option {
	return func(o *Orchestrator) { o.dict = d }
}

// Entry is everything shown for a double-clicked word.
type Entry struct {
	Word        string `json:"word"`
	Translation Result `json:"translation"`
	// Phonetic is PhoneticRaw rewritten into the requested style.
	Phonetic    string `json:"phonetic"`
	PhoneticRaw string `json:"phoneticRaw"`
	AudioURL    string `json:"audioUrl"`
	// ShowPhonetic is false when the raw value does not look like IPA and
	// should not be displayed at all.
	ShowPhonetic bool `json:"showPhonetic"`
}

// Lookup translates req.Text and fetches its pronunciation at the same time.
// Each half is best-effort: a failure on one side leaves the other intact.
func (o *Orchestrator) Lookup(ctx context.Context, req Request, style phonetic.Style) Entry {
	entry := Entry{Word: strings.TrimSpace(req.Text)}

	// Plain Group: neither side cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		entry.Translation = o.Translate(ctx, req)
		return nil
	})
	if o.dict != nil && entry.Word != "" {
		g.Go(func() error {
			d, err := o.dict.Lookup(ctx, entry.Word)
			if err != nil {
				o.log.Debug("dictionary lookup failed", zap.String("word", entry.Word), zap.Error(err))
				return nil
			}
			entry.PhoneticRaw = d.Phonetic
			entry.AudioURL = d.AudioURL
			return nil
		})
	}
	_ = g.Wait()

	if entry.PhoneticRaw != "" {
		entry.Phonetic = phonetic.Normalize(entry.PhoneticRaw, style)
		entry.ShowPhonetic = phonetic.LooksLikeIPA(entry.PhoneticRaw)
	}
	return entry
}
