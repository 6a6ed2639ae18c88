package domain

import "time"

// ConstraintSet 为一次优化的硬约束，字段为空表示不限制
type ConstraintSet struct {
	BudgetLimit *float64   `json:"budgetLimit"`
	Deadline    *time.Time `json:"deadline"`
}
