package domain

import "time"

type Task struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"projectID"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	EstimatedCost  float64   `json:"estimatedCost"`
	RequiredSkills []string  `json:"requiredSkills"`
	Dependencies   []int64   `json:"dependencies"` // 前置任务 ID，仅用于关键路径计算
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

// DurationDays 返回任务窗口的天数
func (t Task) DurationDays() float64 {
	return durationDays(t.StartDate, t.EndDate)
}

func durationDays(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}
