package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Middleware(t *testing.T) {
	metrics := NewMetrics()
	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/api/applications/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	perform(r, http.MethodGet, "/api/applications/abc", nil)
	perform(r, http.MethodGet, "/api/applications/def", nil)
	perform(r, http.MethodGet, "/nowhere", nil)

	w := perform(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `veridia_api_http_requests_total{method="GET",route="/api/applications/:id",status="404"} 2`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, "veridia_api_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_NilSafeRateLimitHit(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.recordRateLimitHit("login") })
}
