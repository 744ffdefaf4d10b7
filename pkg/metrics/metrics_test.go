package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.CascadeResponse("gemini", "", 120*time.Millisecond)
	m.CascadeResponse("hardcoded", "all_llm_unavailable", time.Millisecond)
	m.SetCircuitBreakerState("groq", 2)
	m.VitalsEstimate("estimated")
	m.StreamFrame("measuring")
	m.CacheHit()
	m.CacheMiss()

	body := scrape(t, m)
	assert.Contains(t, body, `pulse_cascade_responses_total{fallback_reason="none",provider="gemini"} 1`)
	assert.Contains(t, body, `pulse_cascade_responses_total{fallback_reason="all_llm_unavailable",provider="hardcoded"} 1`)
	assert.Contains(t, body, `pulse_cb_state{target="groq"} 2`)
	assert.Contains(t, body, `pulse_vitals_estimates_total{outcome="estimated"} 1`)
	assert.Contains(t, body, `pulse_stream_frames_total{status="measuring"} 1`)
	assert.Contains(t, body, `pulse_live_cache_hits_total 1`)
	assert.Contains(t, body, `pulse_live_cache_misses_total 1`)
}

func TestMetrics_Middleware(t *testing.T) {
	m := NewMetrics(nil)
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/patients/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/metrics", m.Handler())

	_, err := app.Test(httptest.NewRequest("GET", "/api/patients/p1", nil))
	require.NoError(t, err)

	body := scrape(t, m)
	assert.Contains(t, body, `pulse_http_requests_total{route="/api/patients/:id",status="204"} 1`)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.CascadeResponse("gemini", "", time.Second)
		m.SetCircuitBreakerState("gemini", 1)
		m.VitalsEstimate("insufficient")
		m.StreamFrame("no_face")
		m.CacheHit()
		m.CacheMiss()
	})
}
