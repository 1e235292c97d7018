package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/upload"
)

func newClient(t *testing.T, opts Options) *qupid.Client {
	t.Helper()
	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(server.Close)

	cfg := qupid.DefaultConfig()
	cfg.Endpoint = server.URL
	client, err := qupid.New(cfg, nil)
	require.NoError(t, err)
	return client
}

func shots(n int) []*upload.File {
	files := make([]*upload.File, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, upload.FromBytes("shot.png", upload.MediaTypePNG, []byte("png")))
	}
	return files
}

func TestStub_AnalyzeDefaultFixture(t *testing.T) {
	client := newClient(t, Options{})

	result, err := client.Analyze(context.Background(), &qupid.AnalyzeRequest{RequestID: "r1", Files: shots(3)})
	require.NoError(t, err)

	require.NotNil(t, result.HealthScore)
	assert.Equal(t, 74.0, *result.HealthScore)
	require.NotNil(t, result.MessagesAnalyzed)
	assert.Equal(t, 3.0, *result.MessagesAnalyzed)
	assert.Equal(t, "you", result.InferredParams.String(qupid.ParamPersonAName))

	plot, err := presentation.DecodePlot(result)
	require.NoError(t, err)
	assert.Equal(t, 1, plot.Width)
	assert.Equal(t, presentation.DefaultPlotCaption, plot.Caption)
}

func TestStub_FailMode(t *testing.T) {
	client := newClient(t, Options{FailWith: "analyzer failed: quota"})

	_, err := client.Analyze(context.Background(), &qupid.AnalyzeRequest{Files: shots(1)})
	require.Error(t, err)
	assert.True(t, qupid.IsKind(err, qupid.KindServerFailure))
	assert.Equal(t, "analyzer failed: quota", qupid.Message(err))
}

func TestStub_LatencyHonorsClientTimeout(t *testing.T) {
	server := httptest.NewServer(NewRouter(Options{Latency: time.Second}))
	t.Cleanup(server.Close)

	cfg := qupid.DefaultConfig()
	cfg.Endpoint = server.URL
	cfg.Timeout = 50 * time.Millisecond
	client, err := qupid.New(cfg, nil)
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), &qupid.AnalyzeRequest{Files: shots(1)})
	require.Error(t, err)
	assert.True(t, qupid.IsKind(err, qupid.KindTransportFailure))
}

func postMultipart(t *testing.T, url, field string, n int) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i := 0; i < n; i++ {
		part, err := mw.CreateFormFile(field, "shot.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestStub_MissingScreenshots(t *testing.T) {
	server := httptest.NewServer(NewRouter(Options{}))
	t.Cleanup(server.Close)

	tests := []struct {
		name string
		do   func() *http.Response
	}{
		{"no parts", func() *http.Response { return postMultipart(t, server.URL+"/analyze-run", "files", 0) }},
		{"wrong field", func() *http.Response { return postMultipart(t, server.URL+"/analyze-run", "images", 2) }},
		{"not multipart", func() *http.Response {
			resp, err := http.Post(server.URL+"/analyze-run", "application/json", bytes.NewBufferString("{}"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = resp.Body.Close() })
			return resp
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.do()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body qupid.ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, MessageMissingScreenshots, body.Error)
		})
	}
}

func TestStub_SingleFileFallback(t *testing.T) {
	server := httptest.NewServer(NewRouter(Options{}))
	t.Cleanup(server.Close)

	resp := postMultipart(t, server.URL+"/analyze-run", "file", 2)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1.0, body["screenshots_analyzed"])
	assert.Equal(t, 1.0, body["messages_analyzed"])
}

func TestStub_HealthAndCORS(t *testing.T) {
	server := httptest.NewServer(NewRouter(Options{AllowedOrigins: []string{"http://localhost:5173"}}))
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
health_score: 40
report_text: "RISKS\nghosting"
inferred_params:
  mutualSync: 12
  personBName: alex
messages_analyzed: 9
`), 0o600))

	result, err := LoadFixture(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 40.0, *result.HealthScore)
	assert.Equal(t, 12.0, result.InferredParams[qupid.ParamMutualSync])
	assert.Equal(t, "alex", result.InferredParams.String(qupid.ParamPersonBName))

	jsonPath := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"report_text": "OUTLOOK\nfine"}`), 0o600))
	result, err = LoadFixture(jsonPath)
	require.NoError(t, err)
	assert.Nil(t, result.HealthScore)
	assert.Equal(t, "OUTLOOK\nfine", result.ReportText)

	_, err = LoadFixture(filepath.Join(dir, "fixture.txt"))
	assert.Error(t, err)
}

func TestLoadFixture_Example(t *testing.T) {
	result, err := LoadFixture(filepath.Join("..", "..", "examples", "fixtures", "decohered.yaml"))
	require.NoError(t, err)

	require.NotNil(t, result.HealthScore)
	assert.Less(t, *result.HealthScore, 70.0)
	assert.Equal(t, 63.0, *result.MessagesAnalyzed)
	assert.Equal(t, 74.0, result.InferredParams[qupid.ParamPersonBBurnedOut])
	assert.Equal(t, "you", result.InferredParams.String(qupid.ParamPersonAName))
	assert.Contains(t, result.ReportText, "INTERVENTIONS")
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)

	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", NewRouter(Options{}), nil, func(a net.Addr) { addrCh <- a })
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr.String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
