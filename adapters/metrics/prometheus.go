package metrics

import (
	"github.com/layer-3/sentinel/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements ports.Metrics with Prometheus counters
type Recorder struct {
	decisions *prometheus.CounterVec
	issued    *prometheus.CounterVec
}

// NewRecorder registers the counters on reg
func NewRecorder(reg prometheus.Registerer) ports.Metrics {
	r := &Recorder{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "auth_decisions_total",
			Help:      "Per-request authentication decisions by outcome.",
		}, []string{"outcome"}),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "tokens_issued_total",
			Help:      "Tokens issued by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.decisions, r.issued)
	return r
}

func (r *Recorder) AuthDecision(outcome string) {
	r.decisions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TokensIssued(kind string) {
	r.issued.WithLabelValues(kind).Inc()
}
