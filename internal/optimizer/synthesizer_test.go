package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func resultFor(genome []domain.Allocation) *Result {
	return &Result{
		Best:           &Individual{Genome: genome, Fitness: 0.5},
		BestFitness:    0.5,
		Generations:    3,
		FitnessHistory: []float64{0.4, 0.45, 0.5},
		Duration:       1500 * time.Millisecond,
		State:          StateExhausted,
	}
}

func TestSynthesize_BudgetExceededIsCritical(t *testing.T) {
	s := trivialSnapshot()
	s.Constraints.BudgetLimit = ptr(100.0)
	// 500 * 0.5 * 1 天 = 250 > 100
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	require.GreaterOrEqual(t, CountViolations(genome, s.Constraints), 1)

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Warnings)
	assert.Equal(t, "budget_exceeded", plan.Warnings[0].Type)
	assert.Equal(t, domain.SeverityCritical, plan.Warnings[0].Severity)
	assert.True(t, plan.HasCriticalWarning())
	assert.InDelta(t, 0.9, plan.Metrics.FeasibilityScore, 1e-9)
}

func TestSynthesize_NearBudgetIsHigh(t *testing.T) {
	s := trivialSnapshot()
	s.Constraints.BudgetLimit = ptr(255.0)
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, domain.SeverityHigh, plan.Warnings[0].Severity)
	assert.False(t, plan.HasCriticalWarning())
	assert.Equal(t, 1.0, plan.Metrics.FeasibilityScore)
}

func TestSynthesize_DeadlineAndSkillWarnings(t *testing.T) {
	s := trivialSnapshot()
	s.Tasks[0].RequiredSkills = []string{"焊接"}
	s.Constraints.Deadline = ptr(day1)
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 2)
	assert.Equal(t, "deadline_exceeded", plan.Warnings[0].Type)
	assert.Equal(t, domain.SeverityHigh, plan.Warnings[0].Severity)
	assert.Equal(t, "skill_mismatch", plan.Warnings[1].Type)
	assert.Equal(t, domain.SeverityMedium, plan.Warnings[1].Severity)
	require.NotNil(t, plan.Warnings[1].TaskID)
	assert.Equal(t, int64(1), *plan.Warnings[1].TaskID)
}

func TestSynthesize_GroupsByTaskAndComputesMetrics(t *testing.T) {
	s := multiTaskSnapshot()
	genome := make([]domain.Allocation, 0)
	for _, task := range s.Tasks {
		genome = append(genome,
			newAllocation(t, s.Resources[1], task, 50),
			newAllocation(t, s.Resources[3], task, 25),
		)
	}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)

	require.Len(t, plan.Recommendations, len(s.Tasks))
	require.Len(t, plan.Schedule.Entries, len(s.Tasks))

	baseline := 0.0
	for i, task := range s.Tasks {
		baseline += task.EstimatedCost
		rec := plan.Recommendations[i]
		assert.Equal(t, task.ID, rec.TaskID)
		require.Len(t, rec.Resources, 2)
		assert.Equal(t, "李强", rec.Resources[0].ResourceName)
		assert.Equal(t, domain.ResourceTypeEquipment, rec.Resources[1].ResourceType)
		assert.InDelta(t, rec.Resources[0].EstimatedCost+rec.Resources[1].EstimatedCost, rec.TotalCost, 1e-9)
		assert.Equal(t, []int64{2, 4}, plan.Schedule.Entries[i].ResourceIDs)
	}

	assert.Equal(t, []int64{1, 2, 4}, plan.Schedule.CriticalTaskIDs)
	assert.InDelta(t, baseline, plan.Metrics.BaselineCost, 1e-9)
	assert.InDelta(t, TotalCost(genome), plan.Metrics.OptimizedCost, 1e-9)
	assert.InDelta(t, baseline-TotalCost(genome), plan.Metrics.CostSavings, 1e-9)
	assert.InDelta(t, 0.375, plan.Metrics.AverageUtilization, 1e-9)
	assert.Equal(t, int64(1500), plan.Metrics.RunTimeMillis)
	assert.Equal(t, "exhausted", plan.Summary.State)
	assert.Equal(t, 3, plan.Summary.Generations)
	assert.Len(t, plan.Allocations, len(genome))
}

func TestSynthesize_CustomCriticalPredicate(t *testing.T) {
	s := multiTaskSnapshot()
	genome := make([]domain.Allocation, 0)
	for _, task := range s.Tasks {
		genome = append(genome, newAllocation(t, s.Resources[0], task, 40))
	}

	onlyFive := func(tasks []domain.Task) (map[int64]bool, error) {
		return map[int64]bool{5: true}, nil
	}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), onlyFive)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, plan.Schedule.CriticalTaskIDs)
}

func TestSynthesize_AvailabilityWarning(t *testing.T) {
	s := trivialSnapshot()
	s.Resources[0].AvailableFrom = day0.AddDate(-1, 0, 0)
	s.Resources[0].AvailableUntil = day0
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, "availability_mismatch", plan.Warnings[0].Type)
	assert.Equal(t, domain.SeverityMedium, plan.Warnings[0].Severity)
	require.NotNil(t, plan.Warnings[0].TaskID)
	assert.Equal(t, int64(1), *plan.Warnings[0].TaskID)
}

func TestSynthesize_NoAvailabilityWarningWithinWindow(t *testing.T) {
	s := trivialSnapshot()
	s.Resources[0].AvailableFrom = day1
	s.Resources[0].AvailableUntil = day2
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)
}

func TestSynthesize_ZeroBudgetZeroCostHasNoWarning(t *testing.T) {
	s := trivialSnapshot()
	s.Constraints.BudgetLimit = ptr(0.0)
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 0)}

	plan, err := Synthesize(resultFor(genome), s, NewEvaluator(DefaultFitnessWeights(), nil), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)
}
