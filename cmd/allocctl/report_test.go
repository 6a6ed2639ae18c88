package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func TestRenderReport(t *testing.T) {
	taskID := int64(2)
	plan := &domain.AllocationPlan{
		Recommendations: []domain.Recommendation{
			{
				TaskID:       1,
				TaskName:     "基坑开挖",
				TotalCost:    3000,
				DurationDays: 5,
				Resources: []domain.ResourceRecommendation{
					{ResourceName: "张伟", ResourceType: domain.ResourceTypeWorker, Percentage: 50, EstimatedCost: 1125},
				},
			},
			{TaskID: 2, TaskName: "钢筋绑扎", TotalCost: 2000, DurationDays: 6},
		},
		Schedule: domain.Schedule{CriticalTaskIDs: []int64{1}},
		Metrics:  domain.PlanMetrics{BaselineCost: 8000, OptimizedCost: 5000, CostSavings: 3000, SavingsPercent: 37.5},
		Warnings: []domain.PlanWarning{
			{Type: "skill_mismatch", Severity: domain.SeverityMedium, Message: "任务 钢筋绑扎 缺少技能", TaskID: &taskID},
		},
		Summary: domain.PlanSummary{State: "converged", BestFitness: 0.8123, Generations: 12},
	}

	out := renderReport(1, plan)

	assert.Contains(t, out, "项目 #1")
	assert.Contains(t, out, "converged")
	assert.Contains(t, out, "0.8123")
	assert.Contains(t, out, "基坑开挖")
	assert.Contains(t, out, "关键路径")
	assert.Contains(t, out, "张伟")
	assert.Contains(t, out, "任务 钢筋绑扎 缺少技能")
	assert.NotContains(t, out, "没有警告")
}

func TestRenderReport_NoWarnings(t *testing.T) {
	out := renderReport(3, &domain.AllocationPlan{Summary: domain.PlanSummary{State: "exhausted"}})
	assert.Contains(t, out, "没有警告")
}
