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

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("send_tokens", "success"))

	RecordOperation("send_tokens", "success", 3*time.Millisecond)

	after := testutil.ToFloat64(ledgerOperations.WithLabelValues("send_tokens", "success"))
	assert.Equal(t, before+1, after)
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))

	done(http.MethodPost, "/api/v1/thank-you", http.StatusConflict, time.Millisecond)

	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodPost, "/api/v1/thank-you", "4xx")))
}

func TestHandlerExposesLedgerMetrics(t *testing.T) {
	RecordRetry()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "thankatech_store_transaction_retries_total")
}
