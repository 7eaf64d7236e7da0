// Package dictionary looks up a word's pronunciation (IPA text and an audio
// clip URL) in the Free Dictionary API.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/minios-linux/quicktrans/fetch"
)

// DefaultEndpoint is the Free Dictionary API entries base.
const DefaultEndpoint = "https://api.dictionaryapi.dev/api/v2/entries/en"

// ErrNoEntry is returned when the response carries no usable phonetic data.
var ErrNoEntry = errors.New("no dictionary entry")

// Fetcher is the network capability the client needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Entry is the pronunciation data for one word.
type Entry struct {
	Phonetic string `json:"phonetic"`
	AudioURL string `json:"audioUrl"`
}

// Client queries the dictionary.
type Client struct {
	fetcher  Fetcher
	endpoint string
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client using f for requests.
func New(f Fetcher, opts ...Option) *Client {
	c := &Client{fetcher: f, endpoint: DefaultEndpoint, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the entries URL for word.
func (c *Client) URL(word string) string {
	return c.endpoint + "/" + url.PathEscape(strings.TrimSpace(word))
}

// Lookup fetches and parses the entry for word.
func (c *Client) Lookup(ctx context.Context, word string) (Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Entry{}, ErrNoEntry
	}
	resp, err := c.fetcher.Fetch(ctx, c.URL(word))
	if err != nil {
		return Entry{}, fmt.Errorf("dictionary lookup %q: %w", word, err)
	}
	if !resp.OK() {
		c.log.Debug("dictionary miss", zap.String("word", word), zap.Int("status", resp.Status))
		return Entry{}, fmt.Errorf("%w: %q (HTTP %d)", ErrNoEntry, word, resp.Status)
	}
	entry, ok := Parse(resp.Body)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNoEntry, word)
	}
	return entry, nil
}

// Parse extracts the first non-empty phonetics[].text and the first
// non-empty phonetics[].audio from the first entry. The entry-level
// "phonetic" field is used when no phonetics[].text is present. It never
// panics and reports false when neither a phonetic nor an audio URL exists.
func Parse(body []byte) (Entry, bool) {
	if !gjson.ValidBytes(body) {
		return Entry{}, false
	}
	first := gjson.GetBytes(body, "0")
	if !first.IsObject() {
		return Entry{}, false
	}

	var e Entry
	first.Get("phonetics").ForEach(func(_, p gjson.Result) bool {
		if e.Phonetic == "" {
			if text := p.Get("text"); text.Type == gjson.String {
				e.Phonetic = strings.TrimSpace(text.Str)
			}
		}
		if e.AudioURL == "" {
			if audio := p.Get("audio"); audio.Type == gjson.String {
				e.AudioURL = strings.TrimSpace(audio.Str)
			}
		}
		return e.Phonetic == "" || e.AudioURL == ""
	})
	if e.Phonetic == "" {
		if ph := first.Get("phonetic"); ph.Type == gjson.String {
			e.Phonetic = strings.TrimSpace(ph.Str)
		}
	}
	return e, e.Phonetic != "" || e.AudioURL != ""
}
