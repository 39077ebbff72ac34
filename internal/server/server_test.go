package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ByLCY/justify/internal/cache"
	"github.com/ByLCY/justify/internal/logging"
	"github.com/ByLCY/justify/internal/metrics"
	"github.com/ByLCY/justify/layout"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts, opts.Metrics
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+"/v1/justify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func lines(t *testing.T, out map[string]any) []string {
	t.Helper()
	raw, ok := out["lines"].([]any)
	require.True(t, ok, "lines 字段缺失: %v", out)
	res := make([]string, len(raw))
	for i, v := range raw {
		res[i] = v.(string)
	}
	return res
}

func TestJustifyOptimal(t *testing.T) {
	ts, m := newTestServer(t, Options{})
	resp, out := post(t, ts, `{"text": "aaa bb cc ddddd", "width": 6, "exponent": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"aaa   ", "bb  cc", "ddddd "}, lines(t, out))
	assert.Equal(t, "optimal", out["algorithm"])
	assert.EqualValues(t, 10, out["badness"])
	assert.Equal(t, false, out["cached"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/v1/justify", "200")))
}

func TestJustifyGreedyAndDefaults(t *testing.T) {
	defaults := layout.DefaultOptions(6)
	defaults.Exponent = 2
	ts, _ := newTestServer(t, Options{Defaults: defaults})
	resp, out := post(t, ts, `{"text": "aaa bb cc ddddd", "algorithm": "greedy"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"aaa bb", "cc    ", "ddddd "}, lines(t, out))
	assert.EqualValues(t, 16, out["badness"])
	assert.Equal(t, "greedy", out["algorithm"])
}

func TestJustifyHyphenate(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	resp, out := post(t, ts, `{"text": "ab cdefgh", "width": 5, "exponent": 2, "hyphenate": true, "penalty": 0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, ln := range lines(t, out) {
		assert.Equal(t, 5, layout.Width(ln), "%q", ln)
	}
	assert.GreaterOrEqual(t, out["hyphenations"], 1.0)
}

func TestJustifyInterpolatesData(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	resp, out := post(t, ts, `{"text": "Hello, ${user.name}!", "data": {"user": {"name": "Ada"}}, "width": 20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{layout.Pad("Hello, Ada!", 20)}, lines(t, out))
}

func TestJustifyErrors(t *testing.T) {
	ts, m := newTestServer(t, Options{})

	resp, out := post(t, ts, `{"text": "abc", "width": 0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "行宽")

	resp, _ = post(t, ts, `{"text": "abc", "algorithm": "knuth"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, `{"text": "abc", "colour": "red"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "未知字段")

	resp, out = post(t, ts, `{"text": "ok abcdefghij ok", "width": 5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "abcdefghij", out["token"])
	assert.EqualValues(t, 1, out["index"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InfeasibleTotal))
}

func TestJustifyBodyLimit(t *testing.T) {
	ts, _ := newTestServer(t, Options{MaxBody: 32})
	body := `{"text": "` + strings.Repeat("word ", 20) + `"}`
	resp, _ := post(t, ts, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestJustifyCache(t *testing.T) {
	mem := cache.NewMemory(8, 0)
	ts, m := newTestServer(t, Options{Cache: mem})

	_, first := post(t, ts, `{"text": "one two three four", "width": 9}`)
	assert.Equal(t, false, first["cached"])
	_, second := post(t, ts, `{"text": "one  two three\nfour", "width": 9}`)
	assert.Equal(t, true, second["cached"], "只在空白上不同的请求命中缓存")
	assert.Equal(t, first["lines"], second["lines"])

	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, Options{RPS: 0.001, Burst: 1})
	resp, _ := post(t, ts, `{"text": "a", "width": 3}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, out := post(t, ts, `{"text": "a", "width": 3}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, out["error"])

	health, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode, "限流只作用于断行接口")
}

func TestRequestIDPropagates(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	const id = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/justify", bytes.NewBufferString(`{"text": "x"}`))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req, err = http.NewRequest(http.MethodPost, ts.URL+"/v1/justify", bytes.NewBufferString(`{"text": "x"}`))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
}

func TestHealthzAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, Options{Cache: cache.NewGuarded("test", cache.NewMemory(1, 0), logging.NewNop())})

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "closed", health["cache"])

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "justify_http_requests_total")
}

func TestServeShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := New(Options{Logger: logging.NewNop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve 未在取消后返回")
	}
}
