package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBillingEventsCounter(t *testing.T) {
	before := testutil.ToFloat64(BillingEvents.WithLabelValues("pay"))

	BillingEvents.WithLabelValues("pay").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(BillingEvents.WithLabelValues("pay")))
}

func TestHandlerServesCollectors(t *testing.T) {
	ActiveSubscribers.Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cinestream_active_subscribers 3")
}
