package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// MetricsEmitter 记录优化运行相关的指标
type MetricsEmitter struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	generations     prometheus.Histogram
	bestFitness     *prometheus.GaugeVec
	planWarnings    *prometheus.CounterVec
	optimizationErr *prometheus.CounterVec
}

// InitMetricsAndEmitter 向 registry 注册全部指标并创建 emitter
func InitMetricsAndEmitter(registry prometheus.Registerer) *MetricsEmitter {
	m := &MetricsEmitter{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocator_optimization_runs_total",
				Help: "Total number of optimization runs by final state",
			},
			[]string{"state"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "allocator_optimization_duration_seconds",
				Help:    "Wall-clock duration of optimization runs",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
			},
		),
		generations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "allocator_optimization_generations",
				Help:    "Number of generations evaluated per optimization run",
				Buckets: prometheus.LinearBuckets(0, 25, 12),
			},
		),
		bestFitness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "allocator_best_fitness",
				Help: "Best fitness of the latest optimization run for each project",
			},
			[]string{"project_id"},
		),
		planWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocator_plan_warnings_total",
				Help: "Total number of plan warnings by type and severity",
			},
			[]string{"type", "severity"},
		),
		optimizationErr: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocator_optimization_errors_total",
				Help: "Total number of optimization requests that failed",
			},
			[]string{"error_type"},
		),
	}

	registry.MustRegister(m.runsTotal, m.runDuration, m.generations, m.bestFitness, m.planWarnings, m.optimizationErr)

	return m
}

// EmitRunMetrics 记录一次已完成的优化运行
func (m *MetricsEmitter) EmitRunMetrics(projectID int64, plan *domain.AllocationPlan) {
	if plan == nil {
		return
	}

	m.runsTotal.WithLabelValues(plan.Summary.State).Inc()
	m.runDuration.Observe(float64(plan.Metrics.RunTimeMillis) / 1000)
	m.generations.Observe(float64(plan.Summary.Generations))
	m.bestFitness.WithLabelValues(strconv.FormatInt(projectID, 10)).Set(plan.Summary.BestFitness)

	for _, w := range plan.Warnings {
		m.planWarnings.WithLabelValues(w.Type, string(w.Severity)).Inc()
	}
}

func (m *MetricsEmitter) EmitErrorMetrics(errorType string) {
	m.optimizationErr.WithLabelValues(errorType).Inc()
}
