package optimizer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

const maxResourcesPerTask = 3

// initPopulation 随机生成初始种群，个体之间互不共享基因组
func (o *Optimizer) initPopulation() ([]*Individual, error) {
	pop := make([]*Individual, o.params.PopulationSize)
	for i := range pop {
		ind, err := o.randomIndividual()
		if err != nil {
			return nil, err
		}
		pop[i] = ind
	}
	return pop, nil
}

// randomIndividual 为每个任务随机挑选 1~3 个资源，投入比例随机，时间窗口覆盖整个任务
func (o *Optimizer) randomIndividual() (*Individual, error) {
	genome := make([]domain.Allocation, 0, len(o.snapshot.Tasks)*2)

	for _, task := range o.snapshot.Tasks {
		candidates := o.candidates[task.ID]

		chosenNum := 1 + o.rng.Intn(min(maxResourcesPerTask, len(candidates)))
		perm := o.rng.Perm(len(candidates))

		for _, idx := range perm[:chosenNum] {
			id, err := uuid.NewRandomFromReader(o.rng)
			if err != nil {
				return nil, fmt.Errorf("无法生成分配 ID: %w", err)
			}

			a, err := domain.NewAllocation(id.String(), candidates[idx], task, task.StartDate, task.EndDate, o.rng.Float64()*100)
			if err != nil {
				return nil, err
			}
			genome = append(genome, a)
		}
	}

	return &Individual{Genome: genome}, nil
}

// candidateResources 计算每个任务的候选资源。
// 优先选择具备全部所需技能的资源，再从中优先选择可用时间覆盖任务窗口的资源，
// 任意一步没有满足条件的资源时保留上一步的结果，由结果中的警告提示。
func candidateResources(tasks []domain.Task, resources []domain.Resource) map[int64][]domain.Resource {
	candidates := make(map[int64][]domain.Resource, len(tasks))

	for _, task := range tasks {
		skilled := filterResources(resources, func(r domain.Resource) bool {
			return r.HasSkills(task.RequiredSkills)
		})
		available := filterResources(skilled, func(r domain.Resource) bool {
			return r.CoversWindow(task.StartDate, task.EndDate)
		})
		candidates[task.ID] = available
	}

	return candidates
}

// filterResources 返回满足 keep 的资源，没有任何资源满足时原样返回
func filterResources(resources []domain.Resource, keep func(domain.Resource) bool) []domain.Resource {
	matched := make([]domain.Resource, 0, len(resources))
	for _, r := range resources {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return resources
	}
	return matched
}

// sortByFitness 按适应度降序稳定排序
func sortByFitness(pop []*Individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].Fitness > pop[j].Fitness
	})
}
