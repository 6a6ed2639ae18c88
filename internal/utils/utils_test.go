package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func TestGenerateCodeFromName(t *testing.T) {
	code := GenerateCodeFromName("王伟")
	assert.True(t, strings.HasPrefix(code, "wang_wei_"), code)
	assert.Len(t, code, len("wang_wei_")+3)
}

func TestGenerateRandomWorker(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		w := GenerateRandomWorker(from, 90)
		require.NoError(t, ValidateResourceAvailability(w))
		assert.Equal(t, domain.ResourceTypeWorker, w.Type)
		assert.NotEmpty(t, w.Skills)
		assert.LessOrEqual(t, len(w.Skills), 3)
		assert.Greater(t, w.CostRate, 0.0)
	}
}

func TestGenerateRandomTask(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	task := GenerateRandomTask(5, 13, start)
	require.NoError(t, ValidateTaskWindow(task))
	assert.Equal(t, int64(5), task.ProjectID)
	assert.Equal(t, "基坑开挖-14", task.Name)
	assert.GreaterOrEqual(t, task.DurationDays(), 2.0)
}

func TestGenerateRandomCostRecord(t *testing.T) {
	for i := 0; i < 50; i++ {
		r := GenerateRandomCostRecord()
		assert.InDelta(t, r.CostRate*r.Percentage/100*r.DurationDays, r.EstimatedCost, 1e-6)
		assert.GreaterOrEqual(t, r.ActualCost/r.EstimatedCost, 0.9)
	}
}

func TestValidateTaskDependencies(t *testing.T) {
	projectTasks := []*domain.Task{{ID: 1}, {ID: 2}}

	assert.NoError(t, ValidateTaskDependencies(&domain.Task{Dependencies: []int64{1, 2}}, projectTasks))
	assert.Error(t, ValidateTaskDependencies(&domain.Task{Dependencies: []int64{3}}, projectTasks))
	assert.Error(t, ValidateTaskDependencies(&domain.Task{Dependencies: []int64{1, 1}}, projectTasks))
}

func TestValidateWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Error(t, ValidateTaskWindow(&domain.Task{StartDate: now, EndDate: now.Add(-time.Hour)}))
	assert.NoError(t, ValidateTaskWindow(&domain.Task{StartDate: now, EndDate: now}))
	assert.Error(t, ValidateResourceAvailability(&domain.Resource{AvailableFrom: now, AvailableUntil: now.AddDate(0, 0, -1)}))
}
