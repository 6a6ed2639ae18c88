package domain

const (
	MailTypeOptimizationCompleted = "optimization_completed"
	MailTypeBudgetAlert           = "budget_alert"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type OptimizationCompletedMailData struct {
	FullName       string  `json:"fullName"`
	ProjectID      int64   `json:"projectID"`
	RunID          int64   `json:"runID"`
	State          string  `json:"state"`
	BestFitness    float64 `json:"bestFitness"`
	OptimizedCost  float64 `json:"optimizedCost"`
	CostSavings    float64 `json:"costSavings"`
	WarningCount   int     `json:"warningCount"`
	RunTimeMillis  int64   `json:"runTimeMillis"`
	GenerationsRun int     `json:"generationsRun"`
}

type BudgetAlertMailData struct {
	FullName      string   `json:"fullName"`
	ProjectID     int64    `json:"projectID"`
	RunID         int64    `json:"runID"`
	BudgetLimit   float64  `json:"budgetLimit"`
	OptimizedCost float64  `json:"optimizedCost"`
	Messages      []string `json:"messages"`
}
