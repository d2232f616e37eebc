package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Comanda metrics
	ComandasCreated    *prometheus.CounterVec
	ComandasValidated  *prometheus.CounterVec
	ComandasCancelled  *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	// Transfer metrics
	TransfersPerformed *prometheus.CounterVec
	TransferAmount     *prometheus.HistogramVec
	TransferDuration   prometheus.Histogram
	TransferErrors     *prometheus.CounterVec

	// Rate metrics
	RateUpdates     *prometheus.CounterVec
	OperationalRate prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ComandasCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_comandas_created_total",
				Help: "Total number of comandas created",
			},
			[]string{"cash_box", "kind"},
		),
		ComandasValidated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_comandas_validated_total",
				Help: "Total number of comandas validated",
			},
			[]string{"cash_box", "kind"},
		),
		ComandasCancelled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_comandas_cancelled_total",
				Help: "Total number of comandas cancelled",
			},
			[]string{"cash_box"},
		),
		ValidationFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_validation_failures_total",
				Help: "Comanda validations rejected, by reason",
			},
			[]string{"reason"},
		),

		TransfersPerformed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_transfers_performed_total",
				Help: "Total number of cash box transfers",
			},
			[]string{"partial"},
		),
		TransferAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salonledger_transfer_amount",
				Help:    "Transferred amounts by currency",
				Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"currency"},
		),
		TransferDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "salonledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		RateUpdates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_rate_updates_total",
				Help: "Operational rate changes by source",
			},
			[]string{"source"},
		),
		OperationalRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "salonledger_operational_rate",
			Help: "Current operational rate in ARS per USD",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salonledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salonledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "salonledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}

// ObserveRate records a new operational rate. Safe on a nil receiver.
func (m *Metrics) ObserveRate(source string, value decimal.Decimal) {
	if m == nil {
		return
	}

	m.RateUpdates.WithLabelValues(source).Inc()
	m.OperationalRate.Set(value.InexactFloat64())
}

// ObserveTransfer records a completed transfer. Safe on a nil receiver.
func (m *Metrics) ObserveTransfer(partial bool, usd, ars decimal.Decimal, seconds float64) {
	if m == nil {
		return
	}

	label := "false"
	if partial {
		label = "true"
	}

	m.TransfersPerformed.WithLabelValues(label).Inc()
	m.TransferAmount.WithLabelValues("USD").Observe(usd.InexactFloat64())
	m.TransferAmount.WithLabelValues("ARS").Observe(ars.InexactFloat64())
	m.TransferDuration.Observe(seconds)
}

// TransferFailed counts a rejected transfer. Safe on a nil receiver.
func (m *Metrics) TransferFailed(errorType string) {
	if m == nil {
		return
	}

	m.TransferErrors.WithLabelValues(errorType).Inc()
}

// ComandaCreated counts a new comanda. Safe on a nil receiver.
func (m *Metrics) ComandaCreated(cashBox, kind string) {
	if m == nil {
		return
	}

	m.ComandasCreated.WithLabelValues(cashBox, kind).Inc()
}

// ComandaValidated counts a validated comanda. Safe on a nil receiver.
func (m *Metrics) ComandaValidated(cashBox, kind string) {
	if m == nil {
		return
	}

	m.ComandasValidated.WithLabelValues(cashBox, kind).Inc()
}

// ValidationFailed counts a rejected validation. Safe on a nil receiver.
func (m *Metrics) ValidationFailed(reason string) {
	if m == nil {
		return
	}

	m.ValidationFailures.WithLabelValues(reason).Inc()
}

// ComandaCancelled counts a cancellation. Safe on a nil receiver.
func (m *Metrics) ComandaCancelled(cashBox string) {
	if m == nil {
		return
	}

	m.ComandasCancelled.WithLabelValues(cashBox).Inc()
}

// RequestStarted tracks a request in flight. Safe on a nil receiver.
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}

	m.HTTPInFlight.Inc()
}

// RequestFinished records a served request. Safe on a nil receiver.
func (m *Metrics) RequestFinished(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}

	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(seconds)
}
