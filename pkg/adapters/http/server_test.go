package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/weft"
	weftHttp "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...weftHttp.Option) (*httptest.Server, *weft.Engine) {
	t.Helper()

	g, err := dsl.New("double").
		Node("Gen").Function("gen").Code("function gen() return 21 end").DataOut("out").
		Node("Double").Function("double").Code("function double(x) return x * 2 end").DataIn("x").DataOut("out").
		Wire("Gen.out", "Double.x").
		Build()
	require.NoError(t, err)

	broken, err := dsl.New("broken").
		Node("Boom").Function("boom").Code("function boom() error('kaput') end").
		Build()
	require.NoError(t, err)

	loader, err := memory.NewLoader(g, broken)
	require.NoError(t, err)

	streams := weftHttp.NewStreamManager()
	eng, err := weft.New(weft.WithLogSink(streams))
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	opts = append([]weftHttp.Option{weftHttp.WithGraphLoader(loader), weftHttp.WithStreams(streams), weftHttp.WithVersion("test")}, opts...)
	srv := httptest.NewServer(weftHttp.NewHandler(eng, opts...))
	t.Cleanup(srv.Close)
	return srv, eng
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	srv, _ := setup(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	info, err := http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer info.Body.Close()
	body := decode[map[string]any](t, info)
	assert.Equal(t, "test", body["version"])
}

func TestServer_PostRun(t *testing.T) {
	srv, _ := setup(t)

	resp := postJSON(t, srv.URL+"/runs", `{"graph":"double"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	run := decode[weftHttp.RunResponse](t, resp)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 2, run.Calls)
	assert.Equal(t, 42.0, run.Values["Double.out"])
	assert.Empty(t, run.Error)
}

func TestServer_PostRun_Failures(t *testing.T) {
	srv, _ := setup(t)

	resp := postJSON(t, srv.URL+"/runs", `{"graph":"broken"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[weftHttp.RunResponse](t, resp)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "Boom", run.Failures[0].Title)
	assert.Contains(t, run.Failures[0].Error, "kaput")

	missing := postJSON(t, srv.URL+"/runs", `{"graph":"nope"}`)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	bad := postJSON(t, srv.URL+"/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestServer_PostRun_NoLoader(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)
	defer eng.Close()

	srv := httptest.NewServer(weftHttp.NewHandler(eng))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/runs", `{"graph":"double"}`)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestServer_ExecuteNode(t *testing.T) {
	srv, _ := setup(t)

	resp := postJSON(t, srv.URL+"/nodes/execute",
		`{"title":"Greet","function":"greet","code":"function greet(name) print('hi ' .. name) return #name end","args":{"name":"ada"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[weftHttp.ExecuteNodeResponse](t, resp)
	assert.Equal(t, 3.0, out.Value)
	assert.Equal(t, "hi ada", out.Output)

	fail := postJSON(t, srv.URL+"/nodes/execute", `{"title":"Empty"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, fail.StatusCode)
	assert.Contains(t, decode[weftHttp.ExecuteNodeResponse](t, fail).Error, "no function")
}

func TestServer_NamespaceLifecycle(t *testing.T) {
	srv, eng := setup(t)

	postJSON(t, srv.URL+"/runs", `{"graph":"double"}`)
	eng.StoreObject("model", struct{}{})

	ns, err := http.Get(srv.URL + "/namespace")
	require.NoError(t, err)
	defer ns.Body.Close()
	names := decode[map[string][]string](t, ns)["names"]
	assert.Contains(t, names, "double")

	objs, err := http.Get(srv.URL + "/objects")
	require.NoError(t, err)
	defer objs.Body.Close()
	assert.Equal(t, []string{"model"}, decode[map[string][]string](t, objs)["keys"])

	perfResp, err := http.Get(srv.URL + "/perf")
	require.NoError(t, err)
	defer perfResp.Body.Close()
	stats := decode[map[string]weftHttp.PerfEntry](t, perfResp)
	assert.Equal(t, 1, stats["Double"].Count)

	cleanup := postJSON(t, srv.URL+"/memory/cleanup", ``)
	assert.Equal(t, http.StatusOK, cleanup.StatusCode)

	reset := postJSON(t, srv.URL+"/namespace/reset", ``)
	assert.Equal(t, http.StatusOK, reset.StatusCode)
	assert.Empty(t, eng.ObjectKeys())
	assert.NotContains(t, eng.NamespaceNames(), "double")
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("weft_runs_total 1\n"))
	})
	srv, _ := setup(t, weftHttp.WithMetricsHandler(metrics))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv, _ := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	postJSON(t, srv.URL+"/runs", `{"graph":"double"}`)

	var got domain.LogEntry
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: {"); ok {
			require.NoError(t, json.Unmarshal([]byte("{"+strings.TrimSpace(data)), &got))
			break
		}
	}
	assert.NotEmpty(t, got.RunID)
	assert.Contains(t, got.Message, "Run started")
}

func TestStreamManager_Filter(t *testing.T) {
	sm := weftHttp.NewStreamManager()
	all, cancelAll := sm.Subscribe("")
	one, cancelOne := sm.Subscribe("run-b")
	assert.Equal(t, 2, sm.Len())

	sm.Log(context.Background(), domain.LogEntry{RunID: "run-a", Message: "a"})
	sm.Log(context.Background(), domain.LogEntry{RunID: "run-b", Message: "b"})

	assert.Len(t, all, 2)
	require.Len(t, one, 1)
	assert.Contains(t, <-one, `"b"`)

	cancelAll()
	cancelOne()
	cancelOne()
	assert.Equal(t, 0, sm.Len())
}
