package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/pkg/metrics"
)

func TestManager_StoreCalls(t *testing.T) {
	t.Parallel()

	m := metrics.NewManager(metrics.WithNamespace("test"))

	m.ObserveStoreCall(false, 0)
	m.ObserveStoreCall(true, 500*time.Millisecond)
	m.ObserveStoreCall(true, 0)
	m.ObserveStoreError()

	expected := `
# HELP test_store_calls_total Calls made to the external store, by call kind.
# TYPE test_store_calls_total counter
test_store_calls_total{kind="batch"} 2
test_store_calls_total{kind="single"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_store_calls_total"))

	expected = `
# HELP test_store_errors_total Failed calls to the external store.
# TYPE test_store_errors_total counter
test_store_errors_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_store_errors_total"))
}

func TestManager_SetClaimCounts(t *testing.T) {
	t.Parallel()

	m := metrics.NewManager()

	m.SetClaimCounts(map[string]int{"Pending": 3}, map[string]int{"Reconexion": 2, "Traslado": 1})
	m.SetClaimCounts(map[string]int{"Pending": 1}, map[string]int{"Traslado": 1})

	expected := `
# HELP claims_active_claims_by_type Unresolved claims by claim type at the last summary refresh.
# TYPE claims_active_claims_by_type gauge
claims_active_claims_by_type{claim_type="Traslado"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "claims_active_claims_by_type"))
}

func TestManager_Handler(t *testing.T) {
	t.Parallel()

	m := metrics.NewManager()
	m.ObserveStoreCall(false, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `claims_store_calls_total{kind="single"} 1`)
}
