package provider

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Keys of the built-in providers.
const (
	Google     = "google"
	MyMemory   = "mymemory"
	BaiduProxy = "baidu-proxy"
	Lingva     = "lingva"
)

// Default endpoints.
const (
	DefaultGoogleEndpoint     = "https://translate.googleapis.com/translate_a/single"
	DefaultMyMemoryEndpoint   = "https://api.mymemory.translated.net/get"
	DefaultBaiduProxyEndpoint = "https://api.yun.info/api/translate"
	DefaultLingvaEndpoint     = "https://lingva.ml/api/v1"
)

// DefaultDisabledCodes are the Baidu error codes that mean the proxy's
// account is unusable: unauthorized user, balance exhausted, service closed.
var DefaultDisabledCodes = []string{"52003", "54004", "58002"}

// Endpoints configures the built-in providers. Empty fields use defaults.
type Endpoints struct {
	Google        string
	MyMemory      string
	BaiduProxy    string
	Lingva        string
	DisabledCodes []string
}

func (e Endpoints) effective() Endpoints {
	if e.Google == "" {
		e.Google = DefaultGoogleEndpoint
	}
	if e.MyMemory == "" {
		e.MyMemory = DefaultMyMemoryEndpoint
	}
	if e.BaiduProxy == "" {
		e.BaiduProxy = DefaultBaiduProxyEndpoint
	}
	if e.Lingva == "" {
		e.Lingva = DefaultLingvaEndpoint
	}
	if len(e.DisabledCodes) == 0 {
		e.DisabledCodes = DefaultDisabledCodes
	}
	return e
}

// New returns a registry holding google, mymemory, baidu-proxy and lingva.
func New(cfg Endpoints) *Registry {
	cfg = cfg.effective()
	r := NewRegistry()
	for _, d := range []Descriptor{
		googleDescriptor(cfg.Google),
		myMemoryDescriptor(cfg.MyMemory),
		baiduProxyDescriptor(cfg.BaiduProxy, cfg.DisabledCodes),
		lingvaDescriptor(cfg.Lingva),
	} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// ---------------------------------------------------------------------------
// Descriptors
// ---------------------------------------------------------------------------

func googleDescriptor(endpoint string) Descriptor {
	return Descriptor{
		Key:  Google,
		Name: "Google Translate",
		BuildURL: func(text string) string {
			return endpoint + "?client=gtx&sl=en&tl=zh-CN&dt=t&q=" + url.QueryEscape(text)
		},
		Parse: func(body []byte) (string, bool) {
			return stringAt(body, "0.0.0")
		},
	}
}

func myMemoryDescriptor(endpoint string) Descriptor {
	return Descriptor{
		Key:  MyMemory,
		Name: "MyMemory",
		BuildURL: func(text string) string {
			return endpoint + "?q=" + url.QueryEscape(text) + "&langpair=en|zh"
		},
		Parse: func(body []byte) (string, bool) {
			return stringAt(body, "responseData.translatedText")
		},
	}
}

func baiduProxyDescriptor(endpoint string, disabledCodes []string) Descriptor {
	codes := make(map[string]struct{}, len(disabledCodes))
	for _, c := range disabledCodes {
		codes[strings.TrimSpace(c)] = struct{}{}
	}
	return Descriptor{
		Key:  BaiduProxy,
		Name: "Baidu Translate (proxy)",
		BuildURL: func(text string) string {
			return endpoint + "?q=" + url.QueryEscape(text) + "&from=en&to=zh"
		},
		Parse: func(body []byte) (string, bool) {
			if !gjson.ValidBytes(body) || gjson.GetBytes(body, "success").Type != gjson.True {
				return "", false
			}
			return stringAt(body, "data.0.dst")
		},
		Disabled: func(status int, body []byte) bool {
			if status != http.StatusInternalServerError || !gjson.ValidBytes(body) {
				return false
			}
			code := gjson.GetBytes(body, "error_code")
			if code.Type != gjson.String && code.Type != gjson.Number {
				return false
			}
			_, ok := codes[code.String()]
			return ok
		},
	}
}

func lingvaDescriptor(endpoint string) Descriptor {
	return Descriptor{
		Key:  Lingva,
		Name: "Lingva",
		BuildURL: func(text string) string {
			return endpoint + "/en/zh/" + url.PathEscape(text)
		},
		Parse: func(body []byte) (string, bool) {
			return stringAt(body, "translation")
		},
	}
}

// stringAt returns the non-empty string at path, or ("", false) for any
// other shape, including invalid JSON.
func stringAt(body []byte, path string) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	res := gjson.GetBytes(body, path)
	if res.Type != gjson.String || res.Str == "" {
		return "", false
	}
	return res.Str, true
}
