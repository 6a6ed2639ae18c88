package domain

import (
	"slices"
	"time"
)

type ResourceType string

const (
	ResourceTypeWorker    ResourceType = "worker"
	ResourceTypeEquipment ResourceType = "equipment"
	ResourceTypeMaterial  ResourceType = "material"
)

type Resource struct {
	ID             int64        `json:"id"`
	Type           ResourceType `json:"type"`
	Name           string       `json:"name"`
	Code           string       `json:"code"`
	AvailableFrom  time.Time    `json:"availableFrom"`
	AvailableUntil time.Time    `json:"availableUntil"`
	CostRate       float64      `json:"costRate"` // 每天的成本
	Skills         []string     `json:"skills"`
	CreatedAt      time.Time    `json:"createdAt"`
	Version        int32        `json:"-"`
}

// HasSkills 判断资源是否具备全部所需技能
func (r Resource) HasSkills(required []string) bool {
	for _, skill := range required {
		if !slices.Contains(r.Skills, skill) {
			return false
		}
	}
	return true
}

// CoversWindow 判断资源的可用时间是否覆盖 [start, end]，未设置的一端视为不受限
func (r Resource) CoversWindow(start, end time.Time) bool {
	if !r.AvailableFrom.IsZero() && r.AvailableFrom.After(start) {
		return false
	}
	if !r.AvailableUntil.IsZero() && r.AvailableUntil.Before(end) {
		return false
	}
	return true
}
