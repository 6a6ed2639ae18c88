package optimizer

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

var ErrInvalidInput = errors.New("无效的优化输入")

// Individual: 一个候选解，基因组按输入任务顺序连续排列
type Individual struct {
	Genome     []domain.Allocation
	Fitness    float64
	Generation int
	Age        int
}

// clone 深拷贝个体，子代之间不共享基因组
func (ind *Individual) clone() *Individual {
	return &Individual{
		Genome:     slices.Clone(ind.Genome),
		Fitness:    ind.Fitness,
		Generation: ind.Generation,
		Age:        ind.Age,
	}
}

// TaskIDs 返回基因组中出现过的任务 ID（按首次出现顺序）
func (ind *Individual) TaskIDs() []int64 {
	ids := make([]int64, 0)
	for _, a := range ind.Genome {
		if len(ids) == 0 || ids[len(ids)-1] != a.TaskID {
			ids = append(ids, a.TaskID)
		}
	}
	return ids
}

// 适应度权重
type FitnessWeights struct {
	Cost             float64 // 成本得分权重
	Utilization      float64 // 利用率得分权重
	ViolationPenalty float64 // 每一项约束违反的惩罚
	Baseline         float64 // 基线常数，保证锦标赛选择时适应度为正
	NeutralCostScore float64 // 未设置预算时的成本得分
	Predictor        float64 // 成本预测模型得分权重，为 0 时不使用
}

func DefaultFitnessWeights() FitnessWeights {
	return FitnessWeights{
		Cost:             0.4,
		Utilization:      0.4,
		ViolationPenalty: 0.1,
		Baseline:         0.2,
		NeutralCostScore: 0.5,
		Predictor:        0,
	}
}

// 遗传算法参数
type Parameters struct {
	PopulationSize       int     // 种群大小
	MaxGenerations       int     // 最大迭代次数
	MutationRate         float64 // 变异概率
	CrossoverRate        float64 // 交叉概率
	ElitismRate          float64 // 精英比例
	TournamentSize       int     // 锦标赛规模
	ConvergenceThreshold float64 // 收敛阈值（最佳适应度的总体方差）
	ConvergenceWindow    int     // 收敛判断窗口
	Workers              int     // 并行评估的协程数，<= 0 时取 CPU 数
	Seed                 int64   // 随机种子
	Weights              FitnessWeights
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:       100,
		MaxGenerations:       200,
		MutationRate:         0.1,
		CrossoverRate:        0.8,
		ElitismRate:          0.1,
		TournamentSize:       5,
		ConvergenceThreshold: 0.001,
		ConvergenceWindow:    10,
		Seed:                 time.Now().UnixNano(),
		Weights:              DefaultFitnessWeights(),
	}
}

func (p Parameters) Validate() error {
	switch {
	case p.PopulationSize < 1:
		return fmt.Errorf("%w: 种群大小必须大于 0", ErrInvalidInput)
	case p.MaxGenerations < 1:
		return fmt.Errorf("%w: 最大迭代次数必须大于 0", ErrInvalidInput)
	case p.MutationRate < 0 || p.MutationRate > 1:
		return fmt.Errorf("%w: 变异概率必须在 [0, 1] 之间", ErrInvalidInput)
	case p.CrossoverRate < 0 || p.CrossoverRate > 1:
		return fmt.Errorf("%w: 交叉概率必须在 [0, 1] 之间", ErrInvalidInput)
	case p.ElitismRate < 0 || p.ElitismRate > 1:
		return fmt.Errorf("%w: 精英比例必须在 [0, 1] 之间", ErrInvalidInput)
	case p.TournamentSize < 1:
		return fmt.Errorf("%w: 锦标赛规模必须大于 0", ErrInvalidInput)
	case p.ConvergenceThreshold < 0:
		return fmt.Errorf("%w: 收敛阈值不能为负数", ErrInvalidInput)
	case p.ConvergenceWindow < 2:
		return fmt.Errorf("%w: 收敛判断窗口至少为 2", ErrInvalidInput)
	}
	return nil
}

// eliteCount 精英数量，比例大于 0 时至少保留一个
func (p Parameters) eliteCount() int {
	n := int(float64(p.PopulationSize) * p.ElitismRate)
	if p.ElitismRate > 0 && n == 0 {
		n = 1
	}
	return min(n, p.PopulationSize)
}

// Snapshot 为一次优化的只读输入
type Snapshot struct {
	Tasks       []domain.Task
	Resources   []domain.Resource
	Constraints domain.ConstraintSet
}

type State string

const (
	StateInitializing State = "initializing"
	StateEvaluating   State = "evaluating"
	StateConverged    State = "converged"
	StateExhausted    State = "exhausted"
	StateInterrupted  State = "interrupted"
)

// Result 为一次优化运行的结果，生成后不再修改
type Result struct {
	Best                  *Individual
	BestFitness           float64
	Generations           int
	ConvergenceGeneration *int
	FitnessHistory        []float64
	Duration              time.Duration
	State                 State
}

func (r *Result) Interrupted() bool {
	return r.State == StateInterrupted
}
