// Package config implements quicktrans.yaml configuration file support.
//
// The file is optional. Every key has a default, and two environment
// variables override the file:
//
//	BAIDU_PROXY_ENDPOINT  providers.baidu_proxy.endpoint
//	QUICKTRANS_PROXY      providers.proxy
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/quicktrans/failmem"
	"github.com/minios-linux/quicktrans/fetch"
	"github.com/minios-linux/quicktrans/locale"
	"github.com/minios-linux/quicktrans/phonetic"
	"github.com/minios-linux/quicktrans/provider"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level quicktrans.yaml structure.
type File struct {
	Providers     Providers     `yaml:"providers"`
	Chains        Chains        `yaml:"chains"`
	Locale        Locale        `yaml:"locale"`
	Phonetic      Phonetic      `yaml:"phonetic"`
	FailureMemory FailureMemory `yaml:"failure_memory"`
	Server        Server        `yaml:"server"`
}

// Providers configures the remote translation services.
type Providers struct {
	BaiduProxy BaiduProxy `yaml:"baidu_proxy"`
	// Google, MyMemory and Lingva override the public endpoints; they are
	// mostly useful for pointing at a local mirror.
	Google   string `yaml:"google,omitempty"`
	MyMemory string `yaml:"mymemory,omitempty"`
	Lingva   string `yaml:"lingva,omitempty"`
	// Timeout per provider request (default 10s).
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Proxy is an HTTP(S) proxy URL for all outgoing requests.
	Proxy string `yaml:"proxy,omitempty"`
}

// BaiduProxy configures the self-hosted Baidu proxy.
type BaiduProxy struct {
	Endpoint      string   `yaml:"endpoint,omitempty"`
	DisabledCodes []string `yaml:"disabled_codes,omitempty"`
}

// Chains lists provider keys in the order they are tried.
type Chains struct {
	Regional []string `yaml:"regional,omitempty"`
	Global   []string `yaml:"global,omitempty"`
}

// Locale selects the classification policy.
type Locale struct {
	Policy string `yaml:"policy,omitempty"`
}

// Phonetic selects the default phonetic style.
type Phonetic struct {
	Style string `yaml:"style,omitempty"`
}

// FailureMemory bounds the disabled-provider store.
type FailureMemory struct {
	TTL        time.Duration `yaml:"ttl,omitempty"`
	MaxEntries int           `yaml:"max_entries,omitempty"`
}

// Server configures "quicktrans serve".
type Server struct {
	Listen string `yaml:"listen,omitempty"`
}

// FileName is the default config file name.
const FileName = "quicktrans.yaml"

// DefaultListen is the default host address.
const DefaultListen = "127.0.0.1:8765"

// Environment overrides.
const (
	EnvBaiduProxyEndpoint = "BAIDU_PROXY_ENDPOINT"
	EnvProxy              = "QUICKTRANS_PROXY"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

// Load reads and validates the config. An empty path means FileName in the
// working directory, where a missing file yields defaults. An explicit path
// must exist.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	var f File
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f.applyEnv()
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &f, nil
}

func (f *File) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaiduProxyEndpoint)); v != "" {
		f.Providers.BaiduProxy.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProxy)); v != "" {
		f.Providers.Proxy = v
	}
}

func (f *File) applyDefaults() {
	if f.Providers.BaiduProxy.Endpoint == "" {
		f.Providers.BaiduProxy.Endpoint = provider.DefaultBaiduProxyEndpoint
	}
	if len(f.Providers.BaiduProxy.DisabledCodes) == 0 {
		f.Providers.BaiduProxy.DisabledCodes = append([]string(nil), provider.DefaultDisabledCodes...)
	}
	if f.Providers.Timeout == 0 {
		f.Providers.Timeout = fetch.DefaultTimeout
	}
	if len(f.Chains.Regional) == 0 {
		f.Chains.Regional = []string{provider.BaiduProxy, provider.MyMemory}
	}
	if len(f.Chains.Global) == 0 {
		f.Chains.Global = []string{provider.Google}
	}
	if f.Locale.Policy == "" {
		f.Locale.Policy = string(locale.DefaultPolicy)
	}
	if f.Phonetic.Style == "" {
		f.Phonetic.Style = string(phonetic.StyleSimplified)
	}
	if f.FailureMemory.TTL == 0 {
		f.FailureMemory.TTL = failmem.DefaultTTL
	}
	if f.FailureMemory.MaxEntries == 0 {
		f.FailureMemory.MaxEntries = failmem.DefaultMaxEntries
	}
	if f.Server.Listen == "" {
		f.Server.Listen = DefaultListen
	}
}

// Validate checks policy, style, chain keys and limits.
func (f *File) Validate() error {
	if _, err := locale.ParsePolicy(f.Locale.Policy); err != nil {
		return fmt.Errorf("locale.policy: %w", err)
	}
	if _, err := phonetic.ParseStyle(f.Phonetic.Style); err != nil {
		return fmt.Errorf("phonetic.style: %w", err)
	}
	reg := provider.New(f.Endpoints())
	if err := reg.Validate(f.Chains.Regional); err != nil {
		return fmt.Errorf("chains.regional: %w", err)
	}
	if err := reg.Validate(f.Chains.Global); err != nil {
		return fmt.Errorf("chains.global: %w", err)
	}
	if f.FailureMemory.TTL <= 0 {
		return fmt.Errorf("failure_memory.ttl must be positive, got %s", f.FailureMemory.TTL)
	}
	if f.FailureMemory.MaxEntries < 0 {
		return fmt.Errorf("failure_memory.max_entries must not be negative, got %d", f.FailureMemory.MaxEntries)
	}
	if f.Providers.Timeout < 0 {
		return fmt.Errorf("providers.timeout must not be negative, got %s", f.Providers.Timeout)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Endpoints returns the provider registry configuration.
func (f *File) Endpoints() provider.Endpoints {
	return provider.Endpoints{
		Google:        f.Providers.Google,
		MyMemory:      f.Providers.MyMemory,
		BaiduProxy:    f.Providers.BaiduProxy.Endpoint,
		Lingva:        f.Providers.Lingva,
		DisabledCodes: f.Providers.BaiduProxy.DisabledCodes,
	}
}

// FetchOptions returns the HTTP client configuration.
func (f *File) FetchOptions() fetch.Options {
	return fetch.Options{Timeout: f.Providers.Timeout, Proxy: f.Providers.Proxy}
}

// Policy returns the parsed locale policy.
func (f *File) Policy() locale.Policy {
	p, err := locale.ParsePolicy(f.Locale.Policy)
	if err != nil {
		return locale.DefaultPolicy
	}
	return p
}

// Style returns the parsed phonetic style.
func (f *File) Style() phonetic.Style {
	s, err := phonetic.ParseStyle(f.Phonetic.Style)
	if err != nil {
		return phonetic.StyleSimplified
	}
	return s
}

// FailMemOptions returns the failure memory options.
func (f *File) FailMemOptions() []failmem.Option {
	return []failmem.Option{
		failmem.WithTTL(f.FailureMemory.TTL),
		failmem.WithMaxEntries(f.FailureMemory.MaxEntries),
	}
}
