package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Optimizer struct {
	params     Parameters
	snapshot   Snapshot
	candidates map[int64][]domain.Resource // {taskID: [候选资源]}

	rng       *rand.Rand
	evaluator *Evaluator
	predictor Predictor
	operators Operators
	hook      func(gen int, pop []*Individual)
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Optimizer)

func WithPredictor(p Predictor) Option {
	return func(o *Optimizer) {
		o.predictor = p
	}
}

func WithOperators(ops Operators) Option {
	return func(o *Optimizer) {
		o.operators = ops
	}
}

// WithGenerationHook 在每一代评估并排序之后调用，hook 不能修改种群
func WithGenerationHook(hook func(gen int, pop []*Individual)) Option {
	return func(o *Optimizer) {
		o.hook = hook
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) {
		o.now = now
	}
}

func New(params Parameters, snapshot Snapshot, opts ...Option) (*Optimizer, error) {
	o := &Optimizer{
		params:   params,
		snapshot: snapshot,
		rng:      rand.New(rand.NewSource(params.Seed)),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := o.validateSnapshot(); err != nil {
		return nil, err
	}

	if o.operators == nil {
		o.operators = newGeneticOperators(params, o.rng)
	}
	o.evaluator = NewEvaluator(params.Weights, o.predictor)
	o.candidates = candidateResources(snapshot.Tasks, snapshot.Resources)

	return o, nil
}

// Evaluator 返回本次优化使用的适应度函数，供结果整理使用
func (o *Optimizer) Evaluator() *Evaluator {
	return o.evaluator
}

func (o *Optimizer) validateSnapshot() error {
	s := o.snapshot

	if len(s.Tasks) == 0 {
		return fmt.Errorf("%w: 任务列表为空", ErrInvalidInput)
	}
	if len(s.Resources) == 0 {
		return fmt.Errorf("%w: 资源列表为空", ErrInvalidInput)
	}

	taskIDs := make(map[int64]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == 0 {
			return fmt.Errorf("%w: 任务 %q 缺少 ID", ErrInvalidInput, t.Name)
		}
		if taskIDs[t.ID] {
			return fmt.Errorf("%w: 任务 %d 重复", ErrInvalidInput, t.ID)
		}
		taskIDs[t.ID] = true

		if t.EndDate.Before(t.StartDate) {
			return fmt.Errorf("%w: 任务 %d 的结束时间不能早于开始时间", ErrInvalidInput, t.ID)
		}
		if t.EstimatedCost < 0 {
			return fmt.Errorf("%w: 任务 %d 的预估成本不能为负数", ErrInvalidInput, t.ID)
		}
	}

	resourceIDs := make(map[int64]bool, len(s.Resources))
	for _, r := range s.Resources {
		if r.ID == 0 {
			return fmt.Errorf("%w: 资源 %q 缺少 ID", ErrInvalidInput, r.Name)
		}
		if resourceIDs[r.ID] {
			return fmt.Errorf("%w: 资源 %d 重复", ErrInvalidInput, r.ID)
		}
		resourceIDs[r.ID] = true

		if r.CostRate < 0 {
			return fmt.Errorf("%w: 资源 %d 的成本费率不能为负数", ErrInvalidInput, r.ID)
		}
	}

	if s.Constraints.BudgetLimit != nil && *s.Constraints.BudgetLimit < 0 {
		return fmt.Errorf("%w: 预算上限不能为负数", ErrInvalidInput)
	}
	if s.Constraints.Deadline != nil && s.Constraints.Deadline.Before(o.now()) {
		return fmt.Errorf("%w: 截止时间不能早于当前时间", ErrInvalidInput)
	}

	if _, err := topoSort(s.Tasks); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

// Run 执行遗传算法直到收敛、达到最大迭代次数或者 ctx 被取消。
// ctx 只在两代之间检查，取消时返回目前为止的最佳结果而不是错误。
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	state := StateInitializing

	o.logger.Debug("开始优化",
		"tasks", len(o.snapshot.Tasks),
		"resources", len(o.snapshot.Resources),
		"populationSize", o.params.PopulationSize,
		"maxGenerations", o.params.MaxGenerations,
		"seed", o.params.Seed,
	)

	// 生成初始种群
	pop, err := o.initPopulation()
	if err != nil {
		return nil, err
	}
	state = StateEvaluating

	history := make([]float64, 0, o.params.MaxGenerations)
	var bestEver *Individual
	var convergenceGeneration *int

	for gen := 0; state == StateEvaluating; gen++ {
		// 每一代都重新计算全部个体的适应度
		o.evaluate(pop)
		sortByFitness(pop)
		history = append(history, pop[0].Fitness)

		if bestEver == nil || pop[0].Fitness > bestEver.Fitness {
			// 需要深拷贝，防止后续繁殖修改
			bestEver = pop[0].clone()
		}

		if o.hook != nil {
			o.hook(gen, pop)
		}

		switch {
		case o.converged(history):
			state = StateConverged
			g := gen
			convergenceGeneration = &g
		case gen+1 >= o.params.MaxGenerations:
			state = StateExhausted
		case ctx.Err() != nil:
			state = StateInterrupted
		default:
			pop = o.evolve(pop)
		}
	}

	result := &Result{
		Best:                  bestEver,
		BestFitness:           bestEver.Fitness,
		Generations:           len(history),
		ConvergenceGeneration: convergenceGeneration,
		FitnessHistory:        history,
		Duration:              time.Since(start),
		State:                 state,
	}

	o.logger.Debug("优化结束",
		"state", result.State,
		"generations", result.Generations,
		"bestFitness", result.BestFitness,
		"duration", result.Duration,
	)

	return result, nil
}

// evaluate 并行计算种群的适应度，每个协程负责互不重叠的一段下标
func (o *Optimizer) evaluate(pop []*Individual) {
	workers := o.params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// 评估本身不会失败，errgroup 在这里只负责限制并发数，Wait 的结果总是 nil
	var g errgroup.Group
	g.SetLimit(workers)
	for _, ind := range pop {
		g.Go(func() error {
			ind.Fitness = o.evaluator.Evaluate(ind.Genome, o.snapshot.Constraints)
			return nil
		})
	}
	_ = g.Wait()
}

// evolve 由已排序的种群产生下一代：精英直接保留，其余通过选择、交叉和变异补齐
func (o *Optimizer) evolve(pop []*Individual) []*Individual {
	next := make([]*Individual, 0, o.params.PopulationSize)

	// 保留精英
	for _, elite := range pop[:o.params.eliteCount()] {
		survivor := elite.clone()
		survivor.Age++
		next = append(next, survivor)
	}

	for len(next) < o.params.PopulationSize {
		p1 := o.operators.Select(pop)
		p2 := o.operators.Select(pop)

		child := o.operators.Crossover(p1, p2)
		child = o.operators.Mutate(child)

		next = append(next, child)
	}

	return next
}

// converged 最近 ConvergenceWindow 代最佳适应度的总体方差小于阈值时认为收敛
func (o *Optimizer) converged(history []float64) bool {
	window := o.params.ConvergenceWindow
	if len(history) < window {
		return false
	}
	return variance(history[len(history)-window:]) < o.params.ConvergenceThreshold
}

func variance(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	v := 0.0
	for _, x := range values {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(values))
}
