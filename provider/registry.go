// Package provider describes the remote translation services the
// orchestrator can fall back across: how to build a request URL for a piece
// of text, how to pull the translation out of a response body, and how to
// recognize a response meaning the service is off for this session.
package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicate is returned when a key is registered twice.
	ErrDuplicate = errors.New("provider already registered")
	// ErrUnknown is returned for keys that were never registered.
	ErrUnknown = errors.New("unknown provider")
)

// Descriptor is a static description of one translation service. It is
// built once and never mutated after registration.
type Descriptor struct {
	Key  string
	Name string

	// BuildURL returns the GET URL for text, encoding it exactly once.
	BuildURL func(text string) string

	// Parse extracts a translation. It returns ("", false) for anything
	// that is not a successful response, including malformed bodies.
	Parse func(body []byte) (string, bool)

	// Disabled reports whether a response means the service refuses all
	// further requests for this session. Nil means the service has no such
	// signal.
	Disabled func(status int, body []byte) bool
}

// IsDisabled is a nil-safe wrapper around Disabled.
func (d Descriptor) IsDisabled(status int, body []byte) bool {
	return d.Disabled != nil && d.Disabled(status, body)
}

// Registry maps provider keys to descriptors.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Descriptor)}
}

// Register adds d under d.Key.
func (r *Registry) Register(d Descriptor) error {
	if d.Key == "" {
		return errors.New("provider key is empty")
	}
	if d.BuildURL == nil || d.Parse == nil {
		return fmt.Errorf("provider %q: BuildURL and Parse are required", d.Key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[d.Key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Key)
	}
	r.providers[d.Key] = d
	return nil
}

func (r *Registry) Get(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.providers[key]
	return d, ok
}

func (r *Registry) MustGet(key string) Descriptor {
	if d, ok := r.Get(key); ok {
		return d
	}
	panic("provider not registered: " + key)
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that every key is registered.
func (r *Registry) Validate(keys []string) error {
	for _, k := range keys {
		if _, ok := r.Get(k); !ok {
			return fmt.Errorf("%w: %s", ErrUnknown, k)
		}
	}
	return nil
}
