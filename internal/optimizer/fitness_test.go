package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

type constantPredictor float64

func (c constantPredictor) Score([]domain.Allocation) float64 {
	return float64(c)
}

func TestEvaluate_NoConstraintsUsesNeutralCostScore(t *testing.T) {
	s := trivialSnapshot()
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	e := NewEvaluator(DefaultFitnessWeights(), nil)

	// 0.4 * 0.5 + 0.4 * 0.5 + 0.2
	assert.InDelta(t, 0.6, e.Evaluate(genome, domain.ConstraintSet{}), 1e-9)
}

func TestEvaluate_Deterministic(t *testing.T) {
	s := multiTaskSnapshot()
	o, err := New(testParameters(5, 1), s, WithClock(fixedClock))
	assert.NoError(t, err)

	ind, err := o.randomIndividual()
	assert.NoError(t, err)

	constraints := domain.ConstraintSet{BudgetLimit: ptr(20000.0), Deadline: ptr(day1.AddDate(0, 0, 15))}
	e := NewEvaluator(DefaultFitnessWeights(), nil)

	first := e.Evaluate(ind.Genome, constraints)
	second := e.Evaluate(ind.Genome, constraints)
	assert.Equal(t, first, second)
}

func TestEvaluate_ZeroBudgetDoesNotProduceNaN(t *testing.T) {
	s := trivialSnapshot()
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	e := NewEvaluator(DefaultFitnessWeights(), nil)
	fitness := e.Evaluate(genome, domain.ConstraintSet{BudgetLimit: ptr(0.0)})

	assert.False(t, math.IsNaN(fitness))
	assert.False(t, math.IsInf(fitness, 0))
	// costScore = 0，超预算一次：0.4 * 0.5 - 0.1 + 0.2
	assert.InDelta(t, 0.3, fitness, 1e-9)
}

func TestEvaluate_BudgetScore(t *testing.T) {
	s := trivialSnapshot()
	// 500 * 0.5 * 1 天 = 250
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	e := NewEvaluator(DefaultFitnessWeights(), nil)
	fitness := e.Evaluate(genome, domain.ConstraintSet{BudgetLimit: ptr(1000.0)})

	// 0.4 * (1 - 250/1000) + 0.4 * 0.5 + 0.2
	assert.InDelta(t, 0.7, fitness, 1e-9)
}

func TestEvaluate_ClampsAtZero(t *testing.T) {
	s := trivialSnapshot()
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 0)}

	weights := DefaultFitnessWeights()
	weights.ViolationPenalty = 10
	e := NewEvaluator(weights, nil)

	deadline := day0
	fitness := e.Evaluate(genome, domain.ConstraintSet{Deadline: &deadline})
	assert.Equal(t, 0.0, fitness)
}

func TestEvaluate_BlendsPredictorScore(t *testing.T) {
	s := trivialSnapshot()
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 50)}

	weights := DefaultFitnessWeights()
	weights.Predictor = 0.5

	without := NewEvaluator(weights, nil).Evaluate(genome, domain.ConstraintSet{})
	with := NewEvaluator(weights, constantPredictor(0.8)).Evaluate(genome, domain.ConstraintSet{})

	assert.InDelta(t, without+0.4, with, 1e-9)
}

func TestCountViolations(t *testing.T) {
	s := trivialSnapshot()
	// 500 * 1.0 * 1 天 = 500
	genome := []domain.Allocation{newAllocation(t, s.Resources[0], s.Tasks[0], 100)}

	tests := []struct {
		name        string
		constraints domain.ConstraintSet
		expected    int
	}{
		{name: "无约束", constraints: domain.ConstraintSet{}, expected: 0},
		{name: "预算充足", constraints: domain.ConstraintSet{BudgetLimit: ptr(500.0)}, expected: 0},
		{name: "超出预算", constraints: domain.ConstraintSet{BudgetLimit: ptr(499.0)}, expected: 1},
		{name: "超出期限", constraints: domain.ConstraintSet{Deadline: ptr(day1)}, expected: 1},
		{name: "同时违反", constraints: domain.ConstraintSet{BudgetLimit: ptr(1.0), Deadline: ptr(day1)}, expected: 2},
		{name: "恰好在期限", constraints: domain.ConstraintSet{Deadline: ptr(day2)}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountViolations(genome, tt.constraints))
		})
	}
}

func TestUtilizationScore(t *testing.T) {
	s := multiTaskSnapshot()
	genome := []domain.Allocation{
		newAllocation(t, s.Resources[0], s.Tasks[0], 20),
		newAllocation(t, s.Resources[1], s.Tasks[0], 60),
		newAllocation(t, s.Resources[2], s.Tasks[1], 100),
	}

	assert.InDelta(t, 0.6, UtilizationScore(genome), 1e-9)
	assert.Equal(t, 0.0, UtilizationScore(nil))
}
