package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder implements Recorder backed by Prometheus counters/gauges,
// labelled per pool.
type PromRecorder struct {
	registry       *prometheus.Registry
	handler        http.Handler
	connOpened     *prometheus.CounterVec
	connClosed     *prometheus.CounterVec
	inspections    *prometheus.CounterVec
	inspectionOK   *prometheus.CounterVec
	inspectionFail *prometheus.CounterVec
	jobsReceived   *prometheus.CounterVec
	lastHeight     *prometheus.GaugeVec
}

// NewPromRecorder creates a Prometheus-backed Recorder and exposes a handler
// for scraping. Namespace is prefixed on all metrics; if empty, "bchwatch"
// is used.
func NewPromRecorder(namespace string) (*PromRecorder, error) {
	if namespace == "" {
		namespace = "bchwatch"
	}
	reg := prometheus.NewRegistry()
	pool := []string{"pool"}

	connOpened := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "connections_opened_total", Help: "Total pool connections opened."}, pool)
	connClosed := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "connections_closed_total", Help: "Total pool connections closed."}, pool)
	inspections := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "inspections_total", Help: "Inspections started."}, pool)
	inspectionOK := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "inspections_succeeded_total", Help: "Inspections that produced a decoded job."}, pool)
	inspectionFail := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "inspections_failed_total", Help: "Inspections that failed, by error kind."}, []string{"pool", "kind"})
	jobsReceived := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "jobs_received_total", Help: "Job notifications received."}, pool)
	lastHeight := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "last_job_height", Help: "Block height of the last job seen."}, pool)

	collectors := []prometheus.Collector{connOpened, connClosed, inspections, inspectionOK, inspectionFail, jobsReceived, lastHeight}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PromRecorder{
		registry:       reg,
		handler:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		connOpened:     connOpened,
		connClosed:     connClosed,
		inspections:    inspections,
		inspectionOK:   inspectionOK,
		inspectionFail: inspectionFail,
		jobsReceived:   jobsReceived,
		lastHeight:     lastHeight,
	}, nil
}

// Handler exposes the HTTP handler for scraping.
func (p *PromRecorder) Handler() http.Handler {
	return p.handler
}

func (p *PromRecorder) ConnOpened(pool string)          { p.connOpened.WithLabelValues(pool).Inc() }
func (p *PromRecorder) ConnClosed(pool string)          { p.connClosed.WithLabelValues(pool).Inc() }
func (p *PromRecorder) InspectionStarted(pool string)   { p.inspections.WithLabelValues(pool).Inc() }
func (p *PromRecorder) InspectionSucceeded(pool string) { p.inspectionOK.WithLabelValues(pool).Inc() }
func (p *PromRecorder) InspectionFailed(pool, kind string) {
	p.inspectionFail.WithLabelValues(pool, kind).Inc()
}
func (p *PromRecorder) JobReceived(pool string, height int64) {
	p.jobsReceived.WithLabelValues(pool).Inc()
	if height > 0 {
		p.lastHeight.WithLabelValues(pool).Set(float64(height))
	}
}
