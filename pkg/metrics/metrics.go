package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/nergy-se/wemportal/pkg/reconcile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wemportal"

type Metrics struct {
	pollsTotal        *prometheus.CounterVec
	pollDuration      prometheus.Histogram
	devices           prometheus.Gauge
	lookupMisses      *prometheus.CounterVec
	statisticFailures *prometheus.CounterVec
	parameterValue    *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Finished polls by result",
		}, []string{"result"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time spent on one poll of both channels",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Devices in the last successful poll",
		}),
		lookupMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "value_lookup_misses_total",
			Help:      "Values dropped because their module or parameter is unknown",
		}, []string{"kind"}),
		statisticFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistic_failures_total",
			Help:      "Statistic categories that could not be fetched",
		}, []string{"category"}),
		parameterValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parameter_value",
			Help:      "Numeric value of every parameter read in the last poll",
		}, []string{"device", "module", "parameter", "unit"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.pollsTotal,
		m.pollDuration,
		m.devices,
		m.lookupMisses,
		m.statisticFailures,
		m.parameterValue,
	)
	return m
}

func (m *Metrics) FetchDone(duration time.Duration, devices int, err error) {
	if err != nil {
		m.pollsTotal.WithLabelValues("error").Inc()
		return
	}
	m.pollsTotal.WithLabelValues("success").Inc()
	m.pollDuration.Observe(duration.Seconds())
	m.devices.Set(float64(devices))
}

func (m *Metrics) LookupMisses(report reconcile.MatchReport) {
	m.lookupMisses.WithLabelValues("module").Add(float64(report.ModuleMisses))
	m.lookupMisses.WithLabelValues("parameter").Add(float64(report.ParameterMisses))
	m.lookupMisses.WithLabelValues("duplicate").Add(float64(report.Duplicates))
}

func (m *Metrics) StatisticFailed(category model.StatisticType) {
	m.statisticFailures.WithLabelValues(category.String()).Inc()
}

// UpdateValues replaces the parameter gauges with the values of devices.
// Readings without a numeric value get no gauge.
func (m *Metrics) UpdateValues(devices []*model.Device) {
	m.parameterValue.Reset()
	for _, d := range devices {
		for _, row := range d.ParameterValues() {
			if row.ValueNumericValue == nil {
				continue
			}
			m.parameterValue.WithLabelValues(
				strconv.Itoa(row.DeviceID),
				strconv.Itoa(row.ModuleIndex)+"_"+model.ModuleType(row.ModuleType).String(),
				row.ParameterID,
				row.ValueUnit,
			).Set(*row.ValueNumericValue)
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
