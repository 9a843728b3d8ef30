package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cloudapp/webapp/config"
	"github.com/cloudapp/webapp/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)
	}
}

func TestRateLimitMiddleware_RejectsBurst(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(2), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestLimiterSet_ExpiresIdleClients(t *testing.T) {
	set := &limiterSet{limit: 1, burst: 1, limiters: map[string]*rateLimiter{}}
	now := time.Now()

	require.True(t, set.allow("10.0.0.1", now))
	require.True(t, set.allow("10.0.0.2", now))
	require.Len(t, set.limiters, 2)

	set.allow("10.0.0.2", now.Add(limiterTTL+time.Second))
	assert.Len(t, set.limiters, 1)
}

func TestNoCache(t *testing.T) {
	r := gin.New()
	r.GET("/", NoCache(), func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	w := serve(r, http.MethodGet, "/")

	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := utils.NewMetrics(context.Background(), config.AppConfig{ServiceName: "test", MetricsExportInterval: 60}, reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/v1/file/:file_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/v1/file/a")
	serve(r, http.MethodGet, "/v1/file/b")
	serve(r, http.MethodGet, "/nowhere")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	endpoints := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "api.calls" {
				continue
			}
			sum := metric.Data.(metricdata.Sum[int64])
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("endpoint")
				endpoints[v.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"/v1/file/:file_id": 2, "unmatched": 1}, endpoints)
}

func TestGinzap_LogsAccessLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Ginzap(zap.New(core)))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/healthz?x=1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestRecoveryWithZap(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryWithZap(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
