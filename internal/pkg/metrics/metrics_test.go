package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.OfferLetterCreated()
	m.OfferLetterCreated()
	m.DocumentGenerated(20 * time.Millisecond)
	m.OfferLetterSent()
	m.LifecycleFailure("notify", "relay")
	m.VerifyLookup("not_found")
	m.RelayEmail("sent")
	m.DocumentReconciled()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("notify", "relay")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifyLookups.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayEmails.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciledDraft))
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/v1/verify/:ref", 404, time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/verify/:ref", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OfferLetterCreated()
		m.DocumentGenerated(time.Second)
		m.LifecycleFailure("create", "validation")
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.OfferLetterCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "offerdesk_offer_letters_created_total 1")
}
