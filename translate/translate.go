// Package translate runs a text through an ordered chain of remote
// translation providers and returns the first successful result.
//
// Providers are tried one at a time. A provider that reports it is disabled
// for the session is recorded in failure memory and skipped for the rest of
// the scope's lifetime (or until the entry expires). Every other failure just
// moves on to the next provider. Nothing here returns an error: an exhausted
// chain is an ordinary unsuccessful Result.
package translate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minios-linux/quicktrans/failmem"
	"github.com/minios-linux/quicktrans/fetch"
	"github.com/minios-linux/quicktrans/metrics"
	"github.com/minios-linux/quicktrans/provider"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Request is one translation request.
type Request struct {
	Text string
	// IsRegionalUser selects the regional chain.
	IsRegionalUser bool
	// Scope identifies the session (browser tab) for failure memory. The
	// empty scope is valid and shared.
	Scope string
}

// Result is the outcome of a translation.
type Result struct {
	Success  bool
	Text     string
	Provider string
}

// MarshalJSON renders text and providerUsed as null on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success      bool    `json:"success"`
		Text         *string `json:"text"`
		ProviderUsed *string `json:"providerUsed"`
	}
	w := wire{Success: r.Success}
	if r.Success {
		text, prov := r.Text, r.Provider
		w.Text, w.ProviderUsed = &text, &prov
	}
	return json.Marshal(w)
}

// Chain is an ordered list of provider keys.
type Chain []string

// ChainPolicy holds the provider order for each kind of user.
type ChainPolicy struct {
	Regional []string `yaml:"regional" json:"regional"`
	Global   []string `yaml:"global" json:"global"`
}

// DefaultChains is baidu-proxy then mymemory for regional users and google
// for everyone else.
func DefaultChains() ChainPolicy {
	return ChainPolicy{
		Regional: []string{provider.BaiduProxy, provider.MyMemory},
		Global:   []string{provider.Google},
	}
}

func (p ChainPolicy) effective() ChainPolicy {
	def := DefaultChains()
	if len(p.Regional) == 0 {
		p.Regional = def.Regional
	}
	if len(p.Global) == 0 {
		p.Global = def.Global
	}
	return p
}

// Fetcher performs a GET and returns the raw status and body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// FailureMemory is the subset of failmem.Store the orchestrator uses.
type FailureMemory interface {
	IsDisabled(provider, scope string) bool
	MarkDisabled(provider, scope string)
}

var _ FailureMemory = (*failmem.Store)(nil)

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	registry *provider.Registry
	memory   FailureMemory
	fetcher  Fetcher
	chains   ChainPolicy
	log      *zap.Logger
	metrics  *metrics.Collectors
	dict     Dictionary
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithChains(p ChainPolicy) Option {
	return func(o *Orchestrator) { o.chains = p.effective() }
}

func WithMetrics(c *metrics.Collectors) Option {
	return func(o *Orchestrator) { o.metrics = c }
}

// New builds an Orchestrator. A nil memory gets a fresh failmem.Store.
func New(registry *provider.Registry, memory FailureMemory, fetcher Fetcher, opts ...Option) *Orchestrator {
	if memory == nil {
		memory = failmem.New()
	}
	o := &Orchestrator{
		registry: registry,
		memory:   memory,
		fetcher:  fetcher,
		chains:   DefaultChains(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Chains returns the configured chain policy.
func (o *Orchestrator) Chains() ChainPolicy { return o.chains }

// SelectChain returns the providers to try for req, in order, leaving out
// every provider disabled in req.Scope.
func (o *Orchestrator) SelectChain(req Request) Chain {
	base := o.chains.Global
	if req.IsRegionalUser {
		base = o.chains.Regional
	}
	chain := make(Chain, 0, len(base))
	for _, key := range base {
		if o.memory.IsDisabled(key, req.Scope) {
			o.log.Debug("skipping disabled provider", zap.String("provider", key), zap.String("scope", req.Scope))
			continue
		}
		chain = append(chain, key)
	}
	return chain
}

// Translate tries each provider of the selected chain until one yields a
// non-empty translation.
func (o *Orchestrator) Translate(ctx context.Context, req Request) Result {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		o.metrics.ObserveTranslation(false)
		return Result{}
	}

	for _, key := range o.SelectChain(req) {
		if ctx.Err() != nil {
			break
		}
		d, ok := o.registry.Get(key)
		if !ok {
			o.log.Warn("unknown provider in chain", zap.String("provider", key))
			continue
		}
		if out, ok := o.attempt(ctx, d, text, req.Scope); ok {
			o.metrics.ObserveTranslation(true)
			return Result{Success: true, Text: out, Provider: key}
		}
	}

	o.log.Info("all providers failed", zap.String("scope", req.Scope), zap.Bool("regional", req.IsRegionalUser))
	o.metrics.ObserveTranslation(false)
	return Result{}
}

// attempt makes exactly one request to d.
func (o *Orchestrator) attempt(ctx context.Context, d provider.Descriptor, text, scope string) (string, bool) {
	start := time.Now()
	resp, err := o.fetcher.Fetch(ctx, d.BuildURL(text))
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.String("provider", d.Key),
		zap.String("scope", scope),
		zap.Duration("latency", elapsed),
	}

	var outcome string
	var out string
	switch {
	case err != nil:
		outcome = metrics.OutcomeNetworkError
		fields = append(fields, zap.Error(err))
	case d.IsDisabled(resp.Status, resp.Body):
		outcome = metrics.OutcomeDisabled
		o.memory.MarkDisabled(d.Key, scope)
	case !resp.OK():
		outcome = metrics.OutcomeHTTPError
	default:
		var ok bool
		if out, ok = d.Parse(resp.Body); ok {
			outcome = metrics.OutcomeSuccess
		} else {
			outcome = metrics.OutcomeParseError
		}
	}
	if resp != nil {
		fields = append(fields, zap.Int("status", resp.Status))
	}
	fields = append(fields, zap.String("outcome", outcome))

	if outcome == metrics.OutcomeDisabled {
		o.log.Warn("provider disabled for scope", fields...)
	} else {
		o.log.Debug("provider attempt", fields...)
	}
	o.metrics.ObserveAttempt(d.Key, outcome, elapsed)

	return out, outcome == metrics.OutcomeSuccess
}
