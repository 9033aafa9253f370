package tracer

import (
	"context"
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics is a pipeline.Observer that exports stage and rewrite
// metrics to Prometheus.
type PipelineMetrics struct {
	stagesTotal   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	inFlight      *prometheus.GaugeVec
	runsTotal     *prometheus.CounterVec
	rewriteScore  prometheus.Histogram
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	f := promauto.With(reg)
	return &PipelineMetrics{
		stagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notes",
			Name:      "pipeline_stage_total",
			Help:      "Finished pipeline stages by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notes",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{.05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "notes",
			Name:      "pipeline_stage_in_flight",
			Help:      "Stages currently running.",
		}, []string{"stage"}),
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notes",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		rewriteScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notes",
			Name:      "style_rewrite_total_score",
			Help:      "Evaluator total score of the accepted rewrite.",
			Buckets:   prometheus.LinearBuckets(0, 3, 11),
		}),
	}
}

func (m *PipelineMetrics) StageStarted(_ context.Context, ev pipeline.StageEvent) {
	m.inFlight.WithLabelValues(ev.Stage).Inc()
}

func (m *PipelineMetrics) StageFinished(_ context.Context, ev pipeline.StageEvent) {
	m.inFlight.WithLabelValues(ev.Stage).Dec()
	m.stagesTotal.WithLabelValues(ev.Stage, ev.Status).Inc()
	m.stageDuration.WithLabelValues(ev.Stage).Observe((time.Duration(ev.Elapsed) * time.Millisecond).Seconds())
}

// ObserveRun records the outcome of a whole run.
func (m *PipelineMetrics) ObserveRun(final *pipeline.State, err error) {
	if err != nil {
		m.runsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.runsTotal.WithLabelValues("success").Inc()
	if final != nil && final.TotalScore != nil {
		m.rewriteScore.Observe(*final.TotalScore)
	}
}
