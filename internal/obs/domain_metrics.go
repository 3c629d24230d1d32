package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics holds the collectors emitted by the bundle and tax engines.
type DomainMetrics struct {
	// TaxRecordsCreated counts inserted tax records by source (period, adhoc).
	TaxRecordsCreated *prometheus.CounterVec
	// TaxCalculationRuns counts CalculateTaxes outcomes.
	TaxCalculationRuns *prometheus.CounterVec
	// TaxRecordsPaid counts records flipped to paid.
	TaxRecordsPaid prometheus.Counter
	// BundleStockRefresh observes full bundle stock refresh latency in milliseconds.
	BundleStockRefresh prometheus.Histogram
	// DomainEvents counts published domain events by topic.
	DomainEvents *prometheus.CounterVec
	// JobsProcessed counts worker task outcomes by task type and status.
	JobsProcessed *prometheus.CounterVec
}

// NewDomainMetrics registers the domain collectors on reg (default registerer when nil).
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DomainMetrics{
		TaxRecordsCreated: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_records_created_total",
			Help:      "Tax records inserted, by taxable source.",
		}, []string{"source"})),
		TaxCalculationRuns: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_calculation_runs_total",
			Help:      "Tax period calculation runs by result.",
		}, []string{"result"})),
		TaxRecordsPaid: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_records_paid_total",
			Help:      "Tax records marked as paid.",
		})),
		BundleStockRefresh: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bundle_stock_refresh_duration_ms",
			Help:      "Latency of recomputing stock for every bundle.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})),
		DomainEvents: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Published domain events by topic.",
		}, []string{"topic"})),
		JobsProcessed: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background tasks processed grouped by status.",
		}, []string{"task", "status"})),
	}
}

// RecordTaxRecords increments the created counter; nil receivers are ignored.
func (m *DomainMetrics) RecordTaxRecords(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TaxRecordsCreated.WithLabelValues(source).Add(float64(n))
}

// RecordTaxRun counts a calculation run outcome.
func (m *DomainMetrics) RecordTaxRun(result string) {
	if m == nil {
		return
	}
	m.TaxCalculationRuns.WithLabelValues(result).Inc()
}

// RecordTaxPaid counts records marked as paid.
func (m *DomainMetrics) RecordTaxPaid(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.TaxRecordsPaid.Add(float64(n))
}

// ObserveStockRefresh records a refresh duration in milliseconds.
func (m *DomainMetrics) ObserveStockRefresh(ms float64) {
	if m == nil {
		return
	}
	m.BundleStockRefresh.Observe(ms)
}

// RecordJob counts a processed background task.
func (m *DomainMetrics) RecordJob(task, status string) {
	if m == nil {
		return
	}
	m.JobsProcessed.WithLabelValues(task, status).Inc()
}
