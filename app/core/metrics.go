package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridbase/gridbase/pkg/metrics"
)

type Metrics struct {
	apiResponseTime   *prometheus.HistogramVec
	apiErrorCounter   *prometheus.CounterVec
	rowMutations      *prometheus.CounterVec
	inventoryFailures *prometheus.CounterVec
	queryCacheHits    *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:   metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:   metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		rowMutations:      metrics.NewCounterVec("row_mutation", []string{"action"}),
		inventoryFailures: metrics.NewCounterVec("inventory_write_failure", []string{"type"}),
		queryCacheHits:    metrics.NewCounterVec("query_cache", []string{"result"}),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) RowMutationInc(action string) {
	m.rowMutations.WithLabelValues(action).Inc()
}

func (m *Metrics) InventoryFailureInc(txType string) {
	m.inventoryFailures.WithLabelValues(txType).Inc()
}

func (m *Metrics) QueryCacheInc(result string) {
	m.queryCacheHits.WithLabelValues(result).Inc()
}
