package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func ValidateTaskWindow(task *domain.Task) error {
	if task.EndDate.Before(task.StartDate) {
		return errors.New("任务结束时间不能早于开始时间")
	}
	return nil
}

func ValidateResourceAvailability(resource *domain.Resource) error {
	if resource.AvailableUntil.Before(resource.AvailableFrom) {
		return errors.New("资源可用结束时间不能早于可用开始时间")
	}
	return nil
}

// ValidateTaskDependencies 检查前置任务是否都属于同一个项目，并且没有重复
func ValidateTaskDependencies(task *domain.Task, projectTasks []*domain.Task) error {
	seen := make(map[int64]bool, len(task.Dependencies))
	for _, dependsOnID := range task.Dependencies {
		if seen[dependsOnID] {
			return fmt.Errorf("前置任务 %d 重复", dependsOnID)
		}
		seen[dependsOnID] = true

		if !slices.ContainsFunc(projectTasks, func(t *domain.Task) bool { return t.ID == dependsOnID }) {
			return fmt.Errorf("前置任务 %d 不存在于该项目中", dependsOnID)
		}
	}
	return nil
}
