package optimizer

import (
	"math/rand"
	"slices"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// Operators 为产生下一代所用的遗传算子。
// 实现不能修改传入的父代个体。
type Operators interface {
	Select(pop []*Individual) *Individual
	Crossover(a, b *Individual) *Individual
	Mutate(ind *Individual) *Individual
}

type geneticOperators struct {
	params Parameters
	rng    *rand.Rand
}

func newGeneticOperators(params Parameters, rng *rand.Rand) *geneticOperators {
	return &geneticOperators{
		params: params,
		rng:    rng,
	}
}

// Select 锦标赛选择
func (g *geneticOperators) Select(pop []*Individual) *Individual {
	best := pop[g.rng.Intn(len(pop))]
	for i := 1; i < g.params.TournamentSize; i++ {
		candidate := pop[g.rng.Intn(len(pop))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// Crossover 单点交叉，切分点为任务序列的中点
func (g *geneticOperators) Crossover(a, b *Individual) *Individual {
	var genome []domain.Allocation
	if g.rng.Float64() < g.params.CrossoverRate {
		genome = splitAtTaskMidpoint(a.Genome, b.Genome)
	} else {
		genome = slices.Clone(a.Genome)
	}

	return &Individual{
		Genome:     genome,
		Generation: a.Generation + 1,
	}
}

// Mutate 以一定概率重新随机每个分配的投入比例，不改变资源和任务
func (g *geneticOperators) Mutate(ind *Individual) *Individual {
	child := ind.clone()
	for i := range child.Genome {
		if g.rng.Float64() >= g.params.MutationRate {
			continue
		}

		mutated, err := child.Genome[i].WithPercentage(g.rng.Float64() * 100)
		if err != nil {
			// [0, 100) 内的比例不会出错
			continue
		}
		child.Genome[i] = mutated
	}
	return child
}

// taskBoundaries 返回基因组中每个任务分组的起始下标
func taskBoundaries(genome []domain.Allocation) []int {
	bounds := make([]int, 0)
	for i, a := range genome {
		if i == 0 || genome[i-1].TaskID != a.TaskID {
			bounds = append(bounds, i)
		}
	}
	return bounds
}

// splitAtTaskMidpoint 取 a 的前一半任务和 b 的后一半任务拼成新的基因组。
// 切分点落在任务分组的边界上，因此两个父代每个任务的分配数量不同也不会丢失任务。
// 任务数量不同时以较少的一方为准。
func splitAtTaskMidpoint(a, b []domain.Allocation) []domain.Allocation {
	boundsA := taskBoundaries(a)
	boundsB := taskBoundaries(b)

	n := min(len(boundsA), len(boundsB))
	if n == 0 {
		return slices.Clone(a)
	}
	mid := n / 2

	genome := make([]domain.Allocation, 0, boundsA[mid]+len(b)-boundsB[mid])
	genome = append(genome, a[:boundsA[mid]]...)
	genome = append(genome, b[boundsB[mid]:]...)
	return genome
}
