package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func TestEmitRunMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := InitMetricsAndEmitter(registry)

	plan := &domain.AllocationPlan{
		Metrics: domain.PlanMetrics{RunTimeMillis: 2500},
		Summary: domain.PlanSummary{State: "converged", BestFitness: 0.82, Generations: 37},
		Warnings: []domain.PlanWarning{
			{Type: "budget_exceeded", Severity: domain.SeverityCritical},
			{Type: "skill_mismatch", Severity: domain.SeverityMedium},
			{Type: "skill_mismatch", Severity: domain.SeverityMedium},
		},
	}

	m.EmitRunMetrics(7, plan)
	m.EmitRunMetrics(7, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("converged")))
	assert.Equal(t, 0.82, testutil.ToFloat64(m.bestFitness.WithLabelValues("7")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.planWarnings.WithLabelValues("skill_mismatch", "medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planWarnings.WithLabelValues("budget_exceeded", "critical")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestEmitErrorMetrics(t *testing.T) {
	m := InitMetricsAndEmitter(prometheus.NewRegistry())

	m.EmitErrorMetrics("invalid_input")
	m.EmitErrorMetrics("invalid_input")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.optimizationErr.WithLabelValues("invalid_input")))
}
