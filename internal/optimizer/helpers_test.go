package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

var (
	day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	day1 = day0.AddDate(0, 0, 1)
	day2 = day0.AddDate(0, 0, 2)
)

func fixedClock() time.Time {
	return day0
}

func ptr[T any](v T) *T {
	return &v
}

// trivialSnapshot: 1 个任务（基准成本 1000，第 1~2 天），1 个资源（每天 500）
func trivialSnapshot() Snapshot {
	return Snapshot{
		Tasks: []domain.Task{
			{ID: 1, ProjectID: 1, Name: "地基浇筑", StartDate: day1, EndDate: day2, EstimatedCost: 1000},
		},
		Resources: []domain.Resource{
			{ID: 1, Type: domain.ResourceTypeWorker, Name: "王伟", CostRate: 500},
		},
	}
}

func multiTaskSnapshot() Snapshot {
	tasks := []domain.Task{
		{ID: 1, Name: "场地平整", StartDate: day1, EndDate: day1.AddDate(0, 0, 3), EstimatedCost: 3000},
		{ID: 2, Name: "地基浇筑", StartDate: day1.AddDate(0, 0, 3), EndDate: day1.AddDate(0, 0, 8), EstimatedCost: 9000, RequiredSkills: []string{"混凝土"}, Dependencies: []int64{1}},
		{ID: 3, Name: "钢筋绑扎", StartDate: day1.AddDate(0, 0, 3), EndDate: day1.AddDate(0, 0, 5), EstimatedCost: 4000, RequiredSkills: []string{"钢筋"}, Dependencies: []int64{1}},
		{ID: 4, Name: "主体结构", StartDate: day1.AddDate(0, 0, 8), EndDate: day1.AddDate(0, 0, 20), EstimatedCost: 30000, Dependencies: []int64{2, 3}},
		{ID: 5, Name: "水电预埋", StartDate: day1.AddDate(0, 0, 8), EndDate: day1.AddDate(0, 0, 12), EstimatedCost: 5000},
	}
	resources := []domain.Resource{
		{ID: 1, Type: domain.ResourceTypeWorker, Name: "王伟", CostRate: 400, Skills: []string{"混凝土"}},
		{ID: 2, Type: domain.ResourceTypeWorker, Name: "李强", CostRate: 450, Skills: []string{"钢筋", "混凝土"}},
		{ID: 3, Type: domain.ResourceTypeWorker, Name: "张敏", CostRate: 380, Skills: []string{"钢筋"}},
		{ID: 4, Type: domain.ResourceTypeEquipment, Name: "塔吊", CostRate: 1200},
		{ID: 5, Type: domain.ResourceTypeEquipment, Name: "挖掘机", CostRate: 900},
		{ID: 6, Type: domain.ResourceTypeMaterial, Name: "商品混凝土", CostRate: 2000},
	}
	return Snapshot{Tasks: tasks, Resources: resources}
}

func testParameters(populationSize, maxGenerations int) Parameters {
	params := DefaultParameters()
	params.PopulationSize = populationSize
	params.MaxGenerations = maxGenerations
	params.Seed = 42
	params.Workers = 4
	return params
}

func newAllocation(t *testing.T, resource domain.Resource, task domain.Task, percentage float64) domain.Allocation {
	t.Helper()
	a, err := domain.NewAllocation("a", resource, task, task.StartDate, task.EndDate, percentage)
	require.NoError(t, err)
	return a
}

// requireCoverage 检查个体覆盖全部任务且投入比例合法
func requireCoverage(t *testing.T, ind *Individual, tasks []domain.Task) {
	t.Helper()

	covered := make(map[int64]bool)
	for _, a := range ind.Genome {
		covered[a.TaskID] = true
		require.GreaterOrEqual(t, a.Percentage, 0.0)
		require.LessOrEqual(t, a.Percentage, 100.0)
	}
	require.Len(t, covered, len(tasks))
	for _, task := range tasks {
		require.True(t, covered[task.ID], "任务 %d 没有被分配", task.ID)
	}
}
