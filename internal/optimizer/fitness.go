package optimizer

import (
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// Predictor 为可选的成本预测模型，返回 [0, 1] 的得分，越高表示预测的超支风险越低。
// 实现必须是确定性的，并且可以被多个协程同时调用。
type Predictor interface {
	Score(genome []domain.Allocation) float64
}

type Evaluator struct {
	weights   FitnessWeights
	predictor Predictor
}

func NewEvaluator(weights FitnessWeights, predictor Predictor) *Evaluator {
	return &Evaluator{
		weights:   weights,
		predictor: predictor,
	}
}

/**
 * 计算基因组的适应度
 * fitness = Cost * costScore + Utilization * utilizationScore - ViolationPenalty * violations + Baseline
 * 其中:
 * 		1. costScore 为 1 - totalCost / budget（没有预算时取中性常数）
 * 		2. utilizationScore 为平均投入比例 / 100
 * 		3. violations 为超预算和超期限的数量
 * 结果不小于 0
 */
func (e *Evaluator) Evaluate(genome []domain.Allocation, constraints domain.ConstraintSet) float64 {
	fitness := e.weights.Cost*e.costScore(genome, constraints) +
		e.weights.Utilization*UtilizationScore(genome) -
		e.weights.ViolationPenalty*float64(CountViolations(genome, constraints)) +
		e.weights.Baseline

	if e.predictor != nil && e.weights.Predictor != 0 {
		fitness += e.weights.Predictor * e.predictor.Score(genome)
	}

	return max(fitness, 0)
}

// ViolationPenalty 返回基因组的违反惩罚
func (e *Evaluator) ViolationPenalty(genome []domain.Allocation, constraints domain.ConstraintSet) float64 {
	return e.weights.ViolationPenalty * float64(CountViolations(genome, constraints))
}

func (e *Evaluator) costScore(genome []domain.Allocation, constraints domain.ConstraintSet) float64 {
	if constraints.BudgetLimit == nil {
		return e.weights.NeutralCostScore
	}
	budget := *constraints.BudgetLimit
	if budget <= 0 {
		// 预算为 0 时不能做除法
		return 0
	}
	return max(0, 1-TotalCost(genome)/budget)
}

func TotalCost(genome []domain.Allocation) float64 {
	total := 0.0
	for _, a := range genome {
		total += a.EstimatedCost
	}
	return total
}

func UtilizationScore(genome []domain.Allocation) float64 {
	if len(genome) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range genome {
		sum += a.Percentage
	}
	return sum / float64(len(genome)) / 100
}

// LatestEnd 返回基因组中最晚的结束时间
func LatestEnd(genome []domain.Allocation) time.Time {
	var latest time.Time
	for _, a := range genome {
		if a.EndDate.After(latest) {
			latest = a.EndDate
		}
	}
	return latest
}

func BudgetExceeded(genome []domain.Allocation, constraints domain.ConstraintSet) bool {
	return constraints.BudgetLimit != nil && TotalCost(genome) > *constraints.BudgetLimit
}

func DeadlineExceeded(genome []domain.Allocation, constraints domain.ConstraintSet) bool {
	return constraints.Deadline != nil && LatestEnd(genome).After(*constraints.Deadline)
}

func CountViolations(genome []domain.Allocation, constraints domain.ConstraintSet) int {
	violations := 0
	if BudgetExceeded(genome, constraints) {
		violations++
	}
	if DeadlineExceeded(genome, constraints) {
		violations++
	}
	return violations
}
