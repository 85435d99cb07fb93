package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics метрики Prometheus приложения.
// Все методы безопасны для nil получателя.
type Metrics struct {
	registry *prometheus.Registry

	equipmentOperations *prometheus.CounterVec
	workOrders          *prometheus.CounterVec
	auditFaults         prometheus.Counter
	httpDuration        *prometheus.HistogramVec
}

// NewMetrics создает метрики в собственном реестре
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		equipmentOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smart_apartment_equipment_operations_total",
				Help: "Number of equipment mutations by operation",
			},
			[]string{"operation"},
		),
		workOrders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smart_apartment_work_orders_total",
				Help: "Number of work order transitions by resulting status",
			},
			[]string{"status"},
		),
		auditFaults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smart_apartment_audit_faults_total",
				Help: "Number of faults detected by the daily audit",
			},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smart_apartment_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		m.equipmentOperations,
		m.workOrders,
		m.auditFaults,
		m.httpDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler возвращает HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEquipmentOperation учитывает изменение оборудования
func (m *Metrics) RecordEquipmentOperation(operation string) {
	if m == nil {
		return
	}
	m.equipmentOperations.WithLabelValues(operation).Inc()
}

// RecordWorkOrder учитывает переход заявки в статус
func (m *Metrics) RecordWorkOrder(status string) {
	if m == nil {
		return
	}
	m.workOrders.WithLabelValues(status).Inc()
}

// RecordAuditFault учитывает неисправность, найденную аудитом
func (m *Metrics) RecordAuditFault() {
	if m == nil {
		return
	}
	m.auditFaults.Inc()
}

// ObserveHTTPRequest записывает длительность HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
