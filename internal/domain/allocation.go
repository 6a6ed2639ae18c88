package domain

import (
	"errors"
	"fmt"
	"time"
)

// AllocationStatus 优化器生成的分配总是 planned，之后的状态流转由使用方决定
type AllocationStatus string

const AllocationStatusPlanned AllocationStatus = "planned"

var ErrInvalidAllocation = errors.New("无效的资源分配")

// Allocation 表示一个资源在某个时间窗口内以一定比例投入到某个任务
type Allocation struct {
	ID            string           `json:"id"`
	ResourceID    int64            `json:"resourceID"`
	TaskID        int64            `json:"taskID"`
	StartDate     time.Time        `json:"startDate"`
	EndDate       time.Time        `json:"endDate"`
	Percentage    float64          `json:"percentage"`
	CostRate      float64          `json:"costRate"`
	EstimatedCost float64          `json:"estimatedCost"`
	Status        AllocationStatus `json:"status"`
}

func NewAllocation(id string, resource Resource, task Task, start, end time.Time, percentage float64) (Allocation, error) {
	if resource.ID == 0 {
		return Allocation{}, fmt.Errorf("%w: 缺少资源引用", ErrInvalidAllocation)
	}
	if task.ID == 0 {
		return Allocation{}, fmt.Errorf("%w: 缺少任务引用", ErrInvalidAllocation)
	}
	if end.Before(start) {
		return Allocation{}, fmt.Errorf("%w: 结束时间不能早于开始时间", ErrInvalidAllocation)
	}

	a := Allocation{
		ID:         id,
		ResourceID: resource.ID,
		TaskID:     task.ID,
		StartDate:  start,
		EndDate:    end,
		CostRate:   resource.CostRate,
		Status:     AllocationStatusPlanned,
	}
	return a.WithPercentage(percentage)
}

// WithPercentage 返回修改了投入比例并重新计算成本后的副本，原分配不变
func (a Allocation) WithPercentage(percentage float64) (Allocation, error) {
	if percentage < 0 || percentage > 100 {
		return Allocation{}, fmt.Errorf("%w: 投入比例 %.2f 超出 [0, 100]", ErrInvalidAllocation, percentage)
	}
	a.Percentage = percentage
	a.EstimatedCost = a.CostRate * (percentage / 100) * a.DurationDays()
	return a, nil
}

func (a Allocation) DurationDays() float64 {
	return durationDays(a.StartDate, a.EndDate)
}
