package optimizer

import (
	"fmt"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// 总成本达到预算的该比例时给出高风险警告
const budgetWarningRatio = 0.95

// Synthesize 将最佳个体整理为推荐方案、排期、指标和警告，不再进行任何搜索。
// critical 为空时使用 CriticalPath。
func Synthesize(result *Result, snapshot Snapshot, evaluator *Evaluator, critical CriticalFunc) (*domain.AllocationPlan, error) {
	if critical == nil {
		critical = CriticalPath
	}

	criticalTasks, err := critical(snapshot.Tasks)
	if err != nil {
		return nil, err
	}

	genome := result.Best.Genome

	resourceMap := make(map[int64]domain.Resource, len(snapshot.Resources))
	for _, r := range snapshot.Resources {
		resourceMap[r.ID] = r
	}

	// 按任务分组
	groups := make(map[int64][]domain.Allocation)
	for _, a := range genome {
		groups[a.TaskID] = append(groups[a.TaskID], a)
	}

	plan := &domain.AllocationPlan{
		Recommendations: make([]domain.Recommendation, 0, len(snapshot.Tasks)),
		Schedule: domain.Schedule{
			Entries:         make([]domain.ScheduleEntry, 0, len(snapshot.Tasks)),
			CriticalTaskIDs: make([]int64, 0),
		},
		Warnings:    make([]domain.PlanWarning, 0),
		Allocations: genome,
	}

	baselineCost := 0.0
	for _, task := range snapshot.Tasks {
		baselineCost += task.EstimatedCost
		allocations := groups[task.ID]

		rec := domain.Recommendation{
			TaskID:       task.ID,
			TaskName:     task.Name,
			Resources:    make([]domain.ResourceRecommendation, 0, len(allocations)),
			DurationDays: task.DurationDays(),
		}
		entry := domain.ScheduleEntry{
			TaskID:       task.ID,
			StartDate:    task.StartDate,
			EndDate:      task.EndDate,
			DurationDays: task.DurationDays(),
			ResourceIDs:  make([]int64, 0, len(allocations)),
			IsCritical:   criticalTasks[task.ID],
		}

		for i, a := range allocations {
			resource := resourceMap[a.ResourceID]
			rec.Resources = append(rec.Resources, domain.ResourceRecommendation{
				AllocationID:  a.ID,
				ResourceID:    a.ResourceID,
				ResourceName:  resource.Name,
				ResourceType:  resource.Type,
				Percentage:    a.Percentage,
				StartDate:     a.StartDate,
				EndDate:       a.EndDate,
				EstimatedCost: a.EstimatedCost,
			})
			rec.TotalCost += a.EstimatedCost

			if i == 0 || a.StartDate.Before(entry.StartDate) {
				entry.StartDate = a.StartDate
			}
			if i == 0 || a.EndDate.After(entry.EndDate) {
				entry.EndDate = a.EndDate
			}
			entry.ResourceIDs = append(entry.ResourceIDs, a.ResourceID)

			if !resource.HasSkills(task.RequiredSkills) {
				plan.Warnings = append(plan.Warnings, domain.PlanWarning{
					Type:     "skill_mismatch",
					Severity: domain.SeverityMedium,
					Message:  fmt.Sprintf("资源 %s 不具备任务 %s 所需的全部技能", resource.Name, task.Name),
					TaskID:   &task.ID,
				})
			}
			if !resource.CoversWindow(a.StartDate, a.EndDate) {
				plan.Warnings = append(plan.Warnings, domain.PlanWarning{
					Type:     "availability_mismatch",
					Severity: domain.SeverityMedium,
					Message: fmt.Sprintf("资源 %s 在 %s ~ %s 期间不可用，无法完整覆盖任务 %s",
						resource.Name, a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"), task.Name),
					TaskID: &task.ID,
				})
			}
		}

		plan.Recommendations = append(plan.Recommendations, rec)
		plan.Schedule.Entries = append(plan.Schedule.Entries, entry)
		if entry.IsCritical {
			plan.Schedule.CriticalTaskIDs = append(plan.Schedule.CriticalTaskIDs, task.ID)
		}
	}

	optimizedCost := TotalCost(genome)
	plan.Metrics = domain.PlanMetrics{
		BaselineCost:       baselineCost,
		OptimizedCost:      optimizedCost,
		CostSavings:        baselineCost - optimizedCost,
		AverageUtilization: UtilizationScore(genome),
		FeasibilityScore:   max(0, 1-evaluator.ViolationPenalty(genome, snapshot.Constraints)),
		RunTimeMillis:      result.Duration.Milliseconds(),
	}
	if baselineCost > 0 {
		plan.Metrics.SavingsPercent = plan.Metrics.CostSavings / baselineCost * 100
	}

	plan.Warnings = append(constraintWarnings(genome, snapshot.Constraints), plan.Warnings...)

	plan.Summary = domain.PlanSummary{
		State:                 string(result.State),
		BestFitness:           result.BestFitness,
		Generations:           result.Generations,
		ConvergenceGeneration: result.ConvergenceGeneration,
		FitnessHistory:        result.FitnessHistory,
	}

	return plan, nil
}

func constraintWarnings(genome []domain.Allocation, constraints domain.ConstraintSet) []domain.PlanWarning {
	warnings := make([]domain.PlanWarning, 0)
	totalCost := TotalCost(genome)

	if constraints.BudgetLimit != nil {
		budget := *constraints.BudgetLimit
		switch {
		case totalCost > budget:
			warnings = append(warnings, domain.PlanWarning{
				Type:     "budget_exceeded",
				Severity: domain.SeverityCritical,
				Message:  fmt.Sprintf("总成本 %.2f 超出预算上限 %.2f", totalCost, budget),
			})
		case budget > 0 && totalCost >= budget*budgetWarningRatio:
			warnings = append(warnings, domain.PlanWarning{
				Type:     "budget_near_limit",
				Severity: domain.SeverityHigh,
				Message:  fmt.Sprintf("总成本 %.2f 已接近预算上限 %.2f", totalCost, budget),
			})
		}
	}

	if DeadlineExceeded(genome, constraints) {
		warnings = append(warnings, domain.PlanWarning{
			Type:     "deadline_exceeded",
			Severity: domain.SeverityHigh,
			Message: fmt.Sprintf("最晚结束时间 %s 晚于截止时间 %s",
				LatestEnd(genome).Format("2006-01-02"), constraints.Deadline.Format("2006-01-02")),
		})
	}

	return warnings
}
