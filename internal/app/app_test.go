package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gainerscli/internal/config"
	"gainerscli/internal/gainers"
	"gainerscli/internal/infrastructure"
	"gainerscli/internal/shared/testutil"
	handlers "gainerscli/internal/transport/http"
)

const rawYahoo = "#,Symbol,Name,Market Cap,Price\n" +
	"1,AAPL,Apple Inc.,3T,150.25 +2.50 (+1.69%)\n" +
	",2,MSFT,Microsoft,2.9T,310.00 -1.20 (-0.39%)\n" +
	"3,BAD\n" +
	"4,ZERO,Zero Corp,1M,0\n"

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.MetricExporter = "prometheus"
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, &bytes.Buffer{}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	a, err := NewApplication(cfg, logger, providers)
	require.NoError(t, err)
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, infrastructure.ServiceName, body.Service)
}

func TestNormalizeEndpoint_CSV(t *testing.T) {
	a := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gainers/yahoo/normalize", strings.NewReader(rawYahoo))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(a, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "4", rec.Header().Get("X-Rows-Read"))
	assert.Equal(t, "2", rec.Header().Get("X-Rows-Accepted"))
	assert.Equal(t,
		"symbol,price,price_change,price_percent_change\n"+
			"AAPL,150.25,+2.50,+1.69\n"+
			"MSFT,310.00,-1.20,-0.39\n",
		rec.Body.String())
}

func TestNormalizeEndpoint_JSON(t *testing.T) {
	a := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gainers/wsj/normalize", strings.NewReader(rawYahoo))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Accept", "application/json")
	rec := serve(a, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body handlers.NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "wsj", body.Source)
	assert.Equal(t, gainers.Stats{Read: 4, Accepted: 2, Short: 1, Invalid: 1}, body.Stats)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "MSFT", body.Records[1].Symbol)
}

func TestNormalizeEndpoint_RejectZeroDisabled(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.Normalize.RejectZeroPrice = false })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gainers/yahoo/normalize", strings.NewReader(rawYahoo))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(a, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Rows-Accepted"))
	assert.Contains(t, rec.Body.String(), "ZERO,0,0,0")
}

func TestNormalizeEndpoint_Errors(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 1024 })

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
		problemType string
	}{
		{"unknown source", "/api/v1/gainers/nasdaq/normalize", "text/csv", rawYahoo, http.StatusNotFound, "/errors/not-found"},
		{"wrong media type", "/api/v1/gainers/yahoo/normalize", "application/json", "{}", http.StatusUnsupportedMediaType, "/errors/unsupported-media-type"},
		{"body too large", "/api/v1/gainers/yahoo/normalize", "text/csv", strings.Repeat("1,A,B,C,1\n", 200), http.StatusRequestEntityTooLarge, "/errors/payload-too-large"},
		{"not a workbook", "/api/v1/gainers/yahoo/normalize", handlers.ContentTypeXLSX, "plain text", http.StatusUnprocessableEntity, "/errors/data/unparseable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := serve(a, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.problemType, body["type"])
		})
	}
}

func TestListSources(t *testing.T) {
	a := newTestApp(t, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/gainers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []handlers.SourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "yahoo", body[0].Name)
	assert.Equal(t, "WSJ", body[1].DisplayName)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gainers/yahoo/normalize", strings.NewReader(rawYahoo))
	req.Header.Set("Content-Type", "text/csv")
	require.Equal(t, http.StatusOK, serve(a, req).Code)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gainers_rows_processed_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRateLimit(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.RPS = 0.001
		cfg.Server.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
}

func TestNormalizerOptions(t *testing.T) {
	n := gainers.NewNormalizer(NormalizerOptions(config.NormalizeConfig{Workers: 2, RejectZeroPrice: false})...)
	_, ok := n.NormalizeRow(gainers.RawRow{"1", "Z", "Zero", "1M", "0"})
	assert.True(t, ok)

	n = gainers.NewNormalizer(NormalizerOptions(config.NormalizeConfig{Workers: 2, RejectZeroPrice: true})...)
	_, ok = n.NormalizeRow(gainers.RawRow{"1", "Z", "Zero", "1M", "0"})
	assert.False(t, ok)
}

func TestRunAndStop(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.Server.Port = 0 })
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
