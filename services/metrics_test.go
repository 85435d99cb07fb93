package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndExpose(t *testing.T) {
	m := NewMetrics()

	m.RecordEquipmentOperation("register")
	m.RecordEquipmentOperation("register")
	m.RecordWorkOrder("Pending")
	m.RecordAuditFault()
	m.ObserveHTTPRequest("GET", "/api/equipment", "200", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.equipmentOperations.WithLabelValues("register")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.workOrders.WithLabelValues("Pending")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["smart_apartment_equipment_operations_total"])
	assert.True(t, names["smart_apartment_http_request_duration_seconds"])

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "smart_apartment_audit_faults_total 1"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordEquipmentOperation("x")
		m.RecordWorkOrder("x")
		m.RecordAuditFault()
		m.ObserveHTTPRequest("GET", "/", "200", 1)
	})
}
