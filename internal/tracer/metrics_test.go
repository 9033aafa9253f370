package tracer

import (
	"context"
	"errors"
	"testing"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipelineMetricsCountsStages(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	m.StageStarted(ctx, pipeline.StageEvent{Stage: "ingest"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight.WithLabelValues("ingest")))

	m.StageFinished(ctx, pipeline.StageEvent{Stage: "ingest", Status: pipeline.StatusSuccess, Elapsed: 1200})
	m.StageStarted(ctx, pipeline.StageEvent{Stage: "ingest"})
	m.StageFinished(ctx, pipeline.StageEvent{Stage: "ingest", Status: pipeline.StatusFailed})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight.WithLabelValues("ingest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stagesTotal.WithLabelValues("ingest", pipeline.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stagesTotal.WithLabelValues("ingest", pipeline.StatusFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
}

func TestPipelineMetricsObserveRun(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())
	score := 28.0

	m.ObserveRun(&pipeline.State{TotalScore: &score}, nil)
	m.ObserveRun(nil, errors.New("boom"))
	m.ObserveRun(&pipeline.State{}, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rewriteScore))
}
