package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecordStockAdjustmentUsesAbsoluteUnits(t *testing.T) {
	RecordStockAdjustment("abs-units-check", -4)
	RecordStockAdjustment("abs-units-check", 3)

	assert.Contains(t, scrape(t), `pos_stock_adjusted_units_total{reason="abs-units-check"} 7`)
}

func TestHandlerExposesHTTPCollectors(t *testing.T) {
	RecordHTTPRequest(http.MethodGet, "", http.StatusNotFound, 20*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `pos_http_requests_total{method="GET",route="unmatched",status="404"}`)
	assert.Contains(t, body, "pos_http_request_duration_seconds_bucket")
}
