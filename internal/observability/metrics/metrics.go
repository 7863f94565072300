package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

var (
	once                      sync.Once
	metricsRouter             *chi.Mux
	priceFeedLatency          *prometheus.HistogramVec
	dbLatency                 *prometheus.HistogramVec
	depositsCounter           prometheus.Counter
	withdrawalsCounter        prometheus.Counter
	eventPublishErrorCounter  prometheus.Counter
	vaultTotalValueGauge      prometheus.Gauge
	httpRequestDurationHist   *prometheus.HistogramVec
	rejectedOperationsCounter *prometheus.CounterVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and registers the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	priceFeedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "price_feed_latency_seconds",
			Help:    "Histogram of price feed call durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of db call durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	depositsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_deposits_total",
			Help: "Total number of committed deposits.",
		},
	)

	withdrawalsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_withdrawals_total",
			Help: "Total number of committed withdrawals.",
		},
	)

	eventPublishErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_event_publish_errors_total",
			Help: "Total number of event publishes that failed.",
		},
	)

	vaultTotalValueGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_total_value_stable_units",
			Help: "Running global total of deposited value in stable units.",
		},
	)

	httpRequestDurationHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "path", "status"},
	)

	rejectedOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_rejected_operations_total",
			Help: "Total number of rejected vault operations by reason.",
		},
		[]string{"operation", "reason"},
	)

	prometheus.MustRegister(
		priceFeedLatency,
		dbLatency,
		depositsCounter,
		withdrawalsCounter,
		eventPublishErrorCounter,
		vaultTotalValueGauge,
		httpRequestDurationHist,
		rejectedOperationsCounter,
	)
}

func RecordPriceFeedLatency(duration time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}
	priceFeedLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func RecordDbLatency(duration time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func IncDeposits() {
	depositsCounter.Inc()
}

func IncWithdrawals() {
	withdrawalsCounter.Inc()
}

func IncEventPublishError() {
	eventPublishErrorCounter.Inc()
}

func SetVaultTotalValue(value float64) {
	vaultTotalValueGauge.Set(value)
}

func IncRejectedOperation(operation, reason string) {
	rejectedOperationsCounter.WithLabelValues(operation, reason).Inc()
}

func RecordHTTPRequest(duration time.Duration, method, path string, statusCode int) {
	httpRequestDurationHist.
		WithLabelValues(method, path, strconv.Itoa(statusCode)).
		Observe(duration.Seconds())
}
