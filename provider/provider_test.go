package provider

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	d := Descriptor{
		Key:      "echo",
		BuildURL: func(text string) string { return "http://example.test/?q=" + text },
		Parse:    func(body []byte) (string, bool) { return string(body), len(body) > 0 },
	}
	require.NoError(t, r.Register(d))

	err := r.Register(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Key)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { r.MustGet("missing") })

	assert.Error(t, r.Register(Descriptor{Key: "incomplete"}))
	assert.Error(t, r.Register(Descriptor{}))
}

func TestNewRegistersBuiltins(t *testing.T) {
	r := New(Endpoints{})
	assert.Equal(t, []string{BaiduProxy, Google, Lingva, MyMemory}, r.Keys())
	assert.NoError(t, r.Validate([]string{BaiduProxy, MyMemory, Google}))

	err := r.Validate([]string{"deepl"})
	assert.True(t, errors.Is(err, ErrUnknown))
}

// ---------------------------------------------------------------------------
// URL builders
// ---------------------------------------------------------------------------

func TestBuildURL(t *testing.T) {
	r := New(Endpoints{})

	tests := []struct {
		key  string
		text string
		want string
	}{
		{Google, "hello world", "https://translate.googleapis.com/translate_a/single?client=gtx&sl=en&tl=zh-CN&dt=t&q=hello+world"},
		{MyMemory, "hello", "https://api.mymemory.translated.net/get?q=hello&langpair=en|zh"},
		{BaiduProxy, "a&b", "https://api.yun.info/api/translate?q=a%26b&from=en&to=zh"},
		{Lingva, "hello world", "https://lingva.ml/api/v1/en/zh/hello%20world"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, r.MustGet(tc.key).BuildURL(tc.text))
		})
	}
}

func TestBuildURLEncodesOnce(t *testing.T) {
	r := New(Endpoints{})
	for _, key := range r.Keys() {
		u := r.MustGet(key).BuildURL("%41")
		assert.Contains(t, u, "%2541", key)
	}
}

func TestBuildURLNeverPanics(t *testing.T) {
	r := New(Endpoints{})
	inputs := []string{"", "\x00\x01\n\t", "😀 emoji", "你好", "a/b?c#d", strings.Repeat("x", 4096), "\xff\xfe"}
	for _, key := range r.Keys() {
		d := r.MustGet(key)
		for _, in := range inputs {
			assert.NotPanics(t, func() { _ = d.BuildURL(in) }, "%s %q", key, in)
		}
	}
}

func TestCustomEndpoints(t *testing.T) {
	r := New(Endpoints{BaiduProxy: "http://127.0.0.1:9/translate", Google: "http://g.test/single"})
	assert.Equal(t, "http://127.0.0.1:9/translate?q=hi&from=en&to=zh", r.MustGet(BaiduProxy).BuildURL("hi"))
	assert.True(t, strings.HasPrefix(r.MustGet(Google).BuildURL("hi"), "http://g.test/single?client=gtx"))
}

// ---------------------------------------------------------------------------
// Parsers
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	r := New(Endpoints{})

	tests := []struct {
		name string
		key  string
		body string
		want string
		ok   bool
	}{
		{"google ok", Google, `[[["你好","hello",null,null,10]],null,"en"]`, "你好", true},
		{"google empty", Google, `[[["","hello"]]]`, "", false},
		{"google number", Google, `[[[42]]]`, "", false},
		{"google object", Google, `{"error":"quota"}`, "", false},
		{"mymemory ok", MyMemory, `{"responseData":{"translatedText":"测试"}}`, "测试", true},
		{"mymemory missing", MyMemory, `{"responseStatus":403}`, "", false},
		{"baidu ok", BaiduProxy, `{"success":true,"data":[{"src":"hello","dst":"测试"}],"from":"en","to":"zh"}`, "测试", true},
		{"baidu success false", BaiduProxy, `{"success":false,"data":[{"dst":"测试"}]}`, "", false},
		{"baidu success string", BaiduProxy, `{"success":"true","data":[{"dst":"测试"}]}`, "", false},
		{"baidu empty data", BaiduProxy, `{"success":true,"data":[]}`, "", false},
		{"lingva ok", Lingva, `{"translation":"你好"}`, "你好", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := r.MustGet(tc.key).Parse([]byte(tc.body))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseIsTotal(t *testing.T) {
	r := New(Endpoints{})
	bodies := []string{"", "null", "true", "42", `"str"`, "[]", "{}", "{", "[[[", "<html>502</html>", `{"data":null}`}
	for _, key := range r.Keys() {
		d := r.MustGet(key)
		for _, b := range bodies {
			var (
				got string
				ok  bool
			)
			assert.NotPanics(t, func() { got, ok = d.Parse([]byte(b)) })
			assert.False(t, ok, "%s %q", key, b)
			assert.Empty(t, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Disabled signal
// ---------------------------------------------------------------------------

func TestBaiduDisabledSignal(t *testing.T) {
	d := New(Endpoints{}).MustGet(BaiduProxy)

	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"string code", http.StatusInternalServerError, `{"success":false,"error_code":"54004"}`, true},
		{"numeric code", http.StatusInternalServerError, `{"error_code":58002}`, true},
		{"unauthorized", http.StatusInternalServerError, `{"error_code":"52003","error_msg":"UNAUTHORIZED USER"}`, true},
		{"other code", http.StatusInternalServerError, `{"error_code":"54003"}`, false},
		{"wrong status", http.StatusOK, `{"error_code":"54004"}`, false},
		{"bad gateway", http.StatusBadGateway, `{"error_code":"54004"}`, false},
		{"no code", http.StatusInternalServerError, `{"success":false}`, false},
		{"not json", http.StatusInternalServerError, `Internal Server Error`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.IsDisabled(tc.status, []byte(tc.body)))
		})
	}
}

func TestConfiguredDisabledCodes(t *testing.T) {
	d := New(Endpoints{DisabledCodes: []string{" 90001 "}}).MustGet(BaiduProxy)
	assert.True(t, d.IsDisabled(500, []byte(`{"error_code":90001}`)))
	assert.False(t, d.IsDisabled(500, []byte(`{"error_code":"54004"}`)))
}

func TestOnlyBaiduHasDisabledSignal(t *testing.T) {
	r := New(Endpoints{})
	for _, key := range []string{Google, MyMemory, Lingva} {
		assert.False(t, r.MustGet(key).IsDisabled(500, []byte(`{"error_code":"54004"}`)), key)
	}
}
