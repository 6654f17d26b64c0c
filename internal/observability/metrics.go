package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	journalMutations *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
	tbBalanced       prometheus.Gauge
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_ledger_journal_mutations_total",
		Help: "Jumlah mutasi jurnal berdasarkan operasi dan hasil.",
	}, []string{"op", "result"})
	reports := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_ledger_report_duration_seconds",
		Help:    "Durasi pembuatan laporan per jenis laporan.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	balanced := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "odyssey_ledger_trial_balance_balanced",
		Help: "1 jika neraca saldo terakhir seimbang, 0 jika tidak.",
	})
	registry.MustRegister(requests, duration, mutations, reports, balanced)
	balanced.Set(1)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		journalMutations: mutations,
		reportDuration:   reports,
		tbBalanced:       balanced,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveJournalMutation mencatat hasil create/update/delete transaksi.
func (m *Metrics) ObserveJournalMutation(op string, err error) {
	if m == nil {
		return
	}
	m.journalMutations.WithLabelValues(op, result(err)).Inc()
}

// ObserveReport mencatat durasi pembuatan laporan.
func (m *Metrics) ObserveReport(report string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(report).Observe(elapsed.Seconds())
}

// SetTrialBalanceBalanced menyimpan status keseimbangan neraca saldo terakhir.
func (m *Metrics) SetTrialBalanceBalanced(balanced bool) {
	if m == nil {
		return
	}
	if balanced {
		m.tbBalanced.Set(1)
		return
	}
	m.tbBalanced.Set(0)
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
