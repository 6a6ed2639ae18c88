package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func TestInitPopulation_CoversEveryTask(t *testing.T) {
	s := multiTaskSnapshot()
	o, err := New(testParameters(30, 1), s, WithClock(fixedClock))
	require.NoError(t, err)

	pop, err := o.initPopulation()
	require.NoError(t, err)
	require.Len(t, pop, 30)

	for _, ind := range pop {
		requireCoverage(t, ind, s.Tasks)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ind.TaskIDs(), "基因组应按任务顺序连续排列")

		perTask := make(map[int64]map[int64]bool)
		for _, a := range ind.Genome {
			if perTask[a.TaskID] == nil {
				perTask[a.TaskID] = make(map[int64]bool)
			}
			assert.False(t, perTask[a.TaskID][a.ResourceID], "同一任务不应重复分配同一资源")
			perTask[a.TaskID][a.ResourceID] = true
			assert.Equal(t, domain.AllocationStatusPlanned, a.Status)
			assert.NotEmpty(t, a.ID)
		}
		for taskID, resources := range perTask {
			assert.GreaterOrEqual(t, len(resources), 1, "任务 %d", taskID)
			assert.LessOrEqual(t, len(resources), maxResourcesPerTask, "任务 %d", taskID)
		}
	}
}

func TestInitPopulation_WindowCoversTask(t *testing.T) {
	s := multiTaskSnapshot()
	o, err := New(testParameters(5, 1), s, WithClock(fixedClock))
	require.NoError(t, err)

	ind, err := o.randomIndividual()
	require.NoError(t, err)

	tasks := make(map[int64]domain.Task)
	for _, task := range s.Tasks {
		tasks[task.ID] = task
	}
	for _, a := range ind.Genome {
		assert.True(t, a.StartDate.Equal(tasks[a.TaskID].StartDate))
		assert.True(t, a.EndDate.Equal(tasks[a.TaskID].EndDate))
	}
}

func TestInitPopulation_NoSharedGenomes(t *testing.T) {
	s := trivialSnapshot()
	o, err := New(testParameters(2, 1), s, WithClock(fixedClock))
	require.NoError(t, err)

	pop, err := o.initPopulation()
	require.NoError(t, err)

	before := pop[1].Genome[0]
	pop[0].Genome[0].Percentage = -1
	assert.Equal(t, before, pop[1].Genome[0])
}

func TestCandidateResources_PrefersSkilledResources(t *testing.T) {
	s := multiTaskSnapshot()
	candidates := candidateResources(s.Tasks, s.Resources)

	ids := func(resources []domain.Resource) []int64 {
		out := make([]int64, 0, len(resources))
		for _, r := range resources {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(candidates[1]))
	assert.Equal(t, []int64{1, 2}, ids(candidates[2]))
	assert.Equal(t, []int64{2, 3}, ids(candidates[3]))
}

func TestCandidateResources_FallsBackToAllResources(t *testing.T) {
	s := trivialSnapshot()
	s.Tasks[0].RequiredSkills = []string{"高空作业"}

	candidates := candidateResources(s.Tasks, s.Resources)
	assert.Len(t, candidates[1], 1)
}

func TestSortByFitness(t *testing.T) {
	a := &Individual{Fitness: 0.3, Generation: 1}
	b := &Individual{Fitness: 0.9}
	c := &Individual{Fitness: 0.3, Generation: 2}
	pop := []*Individual{a, b, c}

	sortByFitness(pop)

	assert.Same(t, b, pop[0])
	// 稳定排序，相同适应度保持原有顺序
	assert.Same(t, a, pop[1])
	assert.Same(t, c, pop[2])
}

func TestCandidateResources_PrefersAvailableResources(t *testing.T) {
	s := trivialSnapshot()
	s.Resources[0].AvailableFrom = day0.AddDate(-1, 0, 0)
	s.Resources[0].AvailableUntil = day0.AddDate(0, 0, -1)
	s.Resources = append(s.Resources, domain.Resource{
		ID: 2, Type: domain.ResourceTypeWorker, Name: "李强", CostRate: 600,
		AvailableFrom: day0, AvailableUntil: day2,
	})

	candidates := candidateResources(s.Tasks, s.Resources)

	require.Len(t, candidates[1], 1)
	assert.Equal(t, int64(2), candidates[1][0].ID)
}

func TestCandidateResources_AvailabilityFallsBackToSkilledResources(t *testing.T) {
	s := multiTaskSnapshot()
	// 具备混凝土技能的两个资源都不可用
	for i := range s.Resources[:2] {
		s.Resources[i].AvailableFrom = day0.AddDate(1, 0, 0)
	}

	candidates := candidateResources(s.Tasks, s.Resources)

	require.Len(t, candidates[2], 2)
	assert.Equal(t, int64(1), candidates[2][0].ID)
	assert.Equal(t, int64(2), candidates[2][1].ID)
	// 不要求技能的任务只剩可用的资源
	assert.Len(t, candidates[1], 4)
}
