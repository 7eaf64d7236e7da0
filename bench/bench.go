// Package bench measures success rate and latency of translation providers
// by sending each of a fixed set of sample texts to each provider several
// times, one request at a time.
package bench

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/minios-linux/quicktrans/fetch"
	"github.com/minios-linux/quicktrans/provider"
)

// SampleTexts are sent to every provider on every run.
var SampleTexts = []string{
	"hello",
	"computer",
	"internationalization",
	"performance test",
	"matured",
}

// DefaultProviders are the providers reachable for regional users.
var DefaultProviders = []string{provider.BaiduProxy, provider.MyMemory, provider.Lingva}

const DefaultRuns = 4

// Failure reasons recorded in Summary.Failures.
const (
	FailureNetwork = "network"
	FailureHTTP    = "http"
	FailureParse   = "parse"
)

// Fetcher performs one GET.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Options controls a run.
type Options struct {
	Runs      int
	Providers []string
	Texts     []string
}

func (o Options) effectiveRuns() int {
	if o.Runs > 0 {
		return o.Runs
	}
	return DefaultRuns
}

func (o Options) effectiveProviders() []string {
	if len(o.Providers) > 0 {
		return o.Providers
	}
	return DefaultProviders
}

func (o Options) effectiveTexts() []string {
	if len(o.Texts) > 0 {
		return o.Texts
	}
	return SampleTexts
}

// Sample is one request.
type Sample struct {
	Provider string        `json:"provider"`
	Text     string        `json:"text"`
	Success  bool          `json:"success"`
	Status   int           `json:"status"`
	Elapsed  time.Duration `json:"-"`
	Failure  string        `json:"failure,omitempty"`
	Preview  string        `json:"preview,omitempty"`
}

// Summary aggregates the samples of one provider. Latencies cover
// successful requests only.
type Summary struct {
	Provider    string         `json:"provider"`
	Name        string         `json:"name"`
	Total       int            `json:"total"`
	Success     int            `json:"success"`
	SuccessRate float64        `json:"successRate"`
	P50         time.Duration  `json:"-"`
	P95         time.Duration  `json:"-"`
	Fastest     time.Duration  `json:"-"`
	Slowest     time.Duration  `json:"-"`
	P50Ms       int64          `json:"p50"`
	P95Ms       int64          `json:"p95"`
	FastestMs   int64          `json:"fastest"`
	SlowestMs   int64          `json:"slowest"`
	Failures    map[string]int `json:"failures"`
}

// Run benchmarks the providers sequentially. onSample, if set, is called
// after every request.
func Run(ctx context.Context, reg *provider.Registry, f Fetcher, opts Options, onSample func(Sample)) ([]Summary, error) {
	keys := opts.effectiveProviders()
	if err := reg.Validate(keys); err != nil {
		return nil, err
	}

	var samples []Sample
	for _, key := range keys {
		d := reg.MustGet(key)
		for run := 0; run < opts.effectiveRuns(); run++ {
			for _, text := range opts.effectiveTexts() {
				if err := ctx.Err(); err != nil {
					return Summarize(reg, samples), fmt.Errorf("benchmark interrupted: %w", err)
				}
				s := runOne(ctx, d, f, text)
				samples = append(samples, s)
				if onSample != nil {
					onSample(s)
				}
			}
		}
	}
	return Summarize(reg, samples), nil
}

func runOne(ctx context.Context, d provider.Descriptor, f Fetcher, text string) Sample {
	s := Sample{Provider: d.Key, Text: text}
	start := time.Now()
	resp, err := f.Fetch(ctx, d.BuildURL(text))
	s.Elapsed = time.Since(start)
	if err != nil {
		s.Failure = FailureNetwork
		return s
	}
	s.Status = resp.Status
	if !resp.OK() {
		s.Failure = FailureHTTP
		return s
	}
	out, ok := d.Parse(resp.Body)
	if !ok {
		s.Failure = FailureParse
		return s
	}
	s.Success = true
	s.Preview = truncate(out, 120)
	return s
}

// Summarize groups samples per provider, sorted by success rate (highest
// first) and then by median latency.
func Summarize(reg *provider.Registry, samples []Sample) []Summary {
	byKey := make(map[string]*Summary)
	times := make(map[string][]time.Duration)
	var order []string

	for _, s := range samples {
		sum, ok := byKey[s.Provider]
		if !ok {
			name := s.Provider
			if d, found := reg.Get(s.Provider); found {
				name = d.Name
			}
			sum = &Summary{Provider: s.Provider, Name: name, Failures: map[string]int{}}
			byKey[s.Provider] = sum
			order = append(order, s.Provider)
		}
		sum.Total++
		if s.Success {
			sum.Success++
			times[s.Provider] = append(times[s.Provider], s.Elapsed)
		} else {
			sum.Failures[s.Failure]++
		}
	}

	out := make([]Summary, 0, len(order))
	for _, key := range order {
		sum := byKey[key]
		t := times[key]
		sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
		if sum.Total > 0 {
			sum.SuccessRate = float64(int(float64(sum.Success)/float64(sum.Total)*1000+0.5)) / 10
		}
		sum.P50 = percentile(t, 50)
		sum.P95 = percentile(t, 95)
		if len(t) > 0 {
			sum.Fastest, sum.Slowest = t[0], t[len(t)-1]
		}
		sum.P50Ms = sum.P50.Milliseconds()
		sum.P95Ms = sum.P95.Milliseconds()
		sum.FastestMs = sum.Fastest.Milliseconds()
		sum.SlowestMs = sum.Slowest.Milliseconds()
		out = append(out, *sum)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		return out[i].P50 < out[j].P50
	})
	return out
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
