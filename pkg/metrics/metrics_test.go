package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkout/pkg/metrics"
)

func TestCollector_Counters(t *testing.T) {
	t.Parallel()

	c := metrics.New("checkout")
	c.CheckoutCompleted("success")
	c.CheckoutCompleted("success")
	c.SessionCreated("stripe", "payment")
	c.PersistAttempt("privileged", false)
	c.PersistAttempt("standard", true)
	c.PersistExhausted()
	c.PlanTypeRepaired(true)

	body := scrape(t, c)
	assert.Contains(t, body, `checkout_requests_total{result="success"} 2`)
	assert.Contains(t, body, `checkout_sessions_created_total{mode="payment",provider="stripe"} 1`)
	assert.Contains(t, body, `checkout_persistence_attempts_total{result="failure",target="privileged"} 1`)
	assert.Contains(t, body, `checkout_persistence_attempts_total{result="success",target="standard"} 1`)
	assert.Contains(t, body, `checkout_persistence_exhausted_total 1`)
	assert.Contains(t, body, `checkout_plan_type_repairs_total{result="success"} 1`)
}

func TestCollector_Middleware(t *testing.T) {
	t.Parallel()

	c := metrics.New("checkout")
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Post("/create-checkout-session", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-checkout-session", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := scrape(t, c)
	assert.Contains(t, body, `checkout_http_requests_total{method="POST",route="/create-checkout-session",status_code="400"} 1`)
}

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}
