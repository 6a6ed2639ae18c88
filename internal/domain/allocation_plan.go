package domain

import "time"

type WarningSeverity string

const (
	SeverityCritical WarningSeverity = "critical"
	SeverityHigh     WarningSeverity = "high"
	SeverityMedium   WarningSeverity = "medium"
)

type ResourceRecommendation struct {
	AllocationID  string       `json:"allocationID"`
	ResourceID    int64        `json:"resourceID"`
	ResourceName  string       `json:"resourceName"`
	ResourceType  ResourceType `json:"resourceType"`
	Percentage    float64      `json:"percentage"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	EstimatedCost float64      `json:"estimatedCost"`
}

type Recommendation struct {
	TaskID       int64                    `json:"taskID"`
	TaskName     string                   `json:"taskName"`
	Resources    []ResourceRecommendation `json:"resources"`
	TotalCost    float64                  `json:"totalCost"`
	DurationDays float64                  `json:"durationDays"`
}

type ScheduleEntry struct {
	TaskID       int64     `json:"taskID"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	DurationDays float64   `json:"durationDays"`
	ResourceIDs  []int64   `json:"resourceIDs"`
	IsCritical   bool      `json:"isCritical"`
}

type Schedule struct {
	Entries         []ScheduleEntry `json:"entries"`
	CriticalTaskIDs []int64         `json:"criticalTaskIDs"`
}

type PlanMetrics struct {
	BaselineCost       float64 `json:"baselineCost"`
	OptimizedCost      float64 `json:"optimizedCost"`
	CostSavings        float64 `json:"costSavings"`
	SavingsPercent     float64 `json:"savingsPercent"`
	AverageUtilization float64 `json:"averageUtilization"`
	FeasibilityScore   float64 `json:"feasibilityScore"`
	RunTimeMillis      int64   `json:"runTimeMillis"`
}

type PlanWarning struct {
	Type     string          `json:"type"`
	Severity WarningSeverity `json:"severity"`
	Message  string          `json:"message"`
	TaskID   *int64          `json:"taskID,omitempty"`
}

type PlanSummary struct {
	State                 string    `json:"state"`
	BestFitness           float64   `json:"bestFitness"`
	Generations           int       `json:"generations"`
	ConvergenceGeneration *int      `json:"convergenceGeneration"`
	FitnessHistory        []float64 `json:"fitnessHistory"`
}

// AllocationPlan 为优化结果面向用户的呈现形式，可直接持久化
type AllocationPlan struct {
	Recommendations []Recommendation `json:"recommendations"`
	Schedule        Schedule         `json:"schedule"`
	Metrics         PlanMetrics      `json:"metrics"`
	Warnings        []PlanWarning    `json:"warnings"`
	Summary         PlanSummary      `json:"summary"`
	Allocations     []Allocation     `json:"allocations"`
}

// HasCriticalWarning 判断计划中是否存在严重级别的警告
func (p *AllocationPlan) HasCriticalWarning() bool {
	for _, w := range p.Warnings {
		if w.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
