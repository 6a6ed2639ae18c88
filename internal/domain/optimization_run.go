package domain

import "time"

type OptimizationParameters struct {
	PopulationSize       int     `json:"populationSize"`
	MaxGenerations       int     `json:"maxGenerations"`
	MutationRate         float64 `json:"mutationRate"`
	CrossoverRate        float64 `json:"crossoverRate"`
	ElitismRate          float64 `json:"elitismRate"`
	TournamentSize       int     `json:"tournamentSize"`
	ConvergenceThreshold float64 `json:"convergenceThreshold"`
	ConvergenceWindow    int     `json:"convergenceWindow"`
	Seed                 int64   `json:"seed"`
}

type OptimizationRun struct {
	ID          int64                  `json:"id"`
	ProjectID   int64                  `json:"projectID"`
	Parameters  OptimizationParameters `json:"parameters"`
	Constraints ConstraintSet          `json:"constraints"`
	Plan        *AllocationPlan        `json:"plan"`
	CreatedBy   int64                  `json:"createdBy"`
	CreatedAt   time.Time              `json:"createdAt"`
	Version     int32                  `json:"-"`
}

// CostRecord 为已完成分配的实际成本记录，用于训练成本预测模型
type CostRecord struct {
	ResourceType  ResourceType `json:"resourceType"`
	DurationDays  float64      `json:"durationDays"`
	Percentage    float64      `json:"percentage"`
	CostRate      float64      `json:"costRate"`
	EstimatedCost float64      `json:"estimatedCost"`
	ActualCost    float64      `json:"actualCost"`
}
