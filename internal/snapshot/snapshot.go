package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/optimizer"
)

// File 为离线优化使用的 TOML 快照文件
type File struct {
	ProjectID   int64           `toml:"project_id"`
	Constraints ConstraintsFile `toml:"constraints"`
	Optimizer   ParametersFile  `toml:"optimizer"`
	Tasks       []TaskFile      `toml:"tasks"`
	Resources   []ResourceFile  `toml:"resources"`
}

type ConstraintsFile struct {
	BudgetLimit *float64   `toml:"budget_limit"`
	Deadline    *time.Time `toml:"deadline"`
}

// ParametersFile 中未设置的字段沿用默认参数
type ParametersFile struct {
	PopulationSize       *int     `toml:"population_size"`
	MaxGenerations       *int     `toml:"max_generations"`
	MutationRate         *float64 `toml:"mutation_rate"`
	CrossoverRate        *float64 `toml:"crossover_rate"`
	ElitismRate          *float64 `toml:"elitism_rate"`
	TournamentSize       *int     `toml:"tournament_size"`
	ConvergenceThreshold *float64 `toml:"convergence_threshold"`
	ConvergenceWindow    *int     `toml:"convergence_window"`
	Seed                 *int64   `toml:"seed"`
}

type TaskFile struct {
	ID             int64     `toml:"id"`
	Name           string    `toml:"name"`
	StartDate      time.Time `toml:"start_date"`
	EndDate        time.Time `toml:"end_date"`
	EstimatedCost  float64   `toml:"estimated_cost"`
	RequiredSkills []string  `toml:"required_skills"`
	Dependencies   []int64   `toml:"dependencies"`
}

// ResourceFile 中未设置的可用时间视为不受限
type ResourceFile struct {
	ID             int64     `toml:"id"`
	Type           string    `toml:"type"`
	Name           string    `toml:"name"`
	Code           string    `toml:"code"`
	AvailableFrom  time.Time `toml:"available_from"`
	AvailableUntil time.Time `toml:"available_until"`
	CostRate       float64   `toml:"cost_rate"`
	Skills         []string  `toml:"skills"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取快照文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析快照，不允许出现未知字段以便尽早发现拼写错误
func Parse(data []byte) (*File, error) {
	f := &File{}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("快照文件包含未知字段:\n%s", strictErr.String())
		}
		return nil, fmt.Errorf("解析快照文件失败: %w", err)
	}

	for _, r := range f.Resources {
		switch domain.ResourceType(r.Type) {
		case domain.ResourceTypeWorker, domain.ResourceTypeEquipment, domain.ResourceTypeMaterial:
		default:
			return nil, fmt.Errorf("资源 %d 的类型 %q 无效", r.ID, r.Type)
		}
	}

	return f, nil
}

func (f *File) Snapshot() optimizer.Snapshot {
	s := optimizer.Snapshot{
		Tasks:     make([]domain.Task, 0, len(f.Tasks)),
		Resources: make([]domain.Resource, 0, len(f.Resources)),
		Constraints: domain.ConstraintSet{
			BudgetLimit: f.Constraints.BudgetLimit,
			Deadline:    f.Constraints.Deadline,
		},
	}

	for _, t := range f.Tasks {
		s.Tasks = append(s.Tasks, domain.Task{
			ID:             t.ID,
			ProjectID:      f.ProjectID,
			Name:           t.Name,
			StartDate:      t.StartDate,
			EndDate:        t.EndDate,
			EstimatedCost:  t.EstimatedCost,
			RequiredSkills: t.RequiredSkills,
			Dependencies:   t.Dependencies,
		})
	}

	for _, r := range f.Resources {
		s.Resources = append(s.Resources, domain.Resource{
			ID:             r.ID,
			Type:           domain.ResourceType(r.Type),
			Name:           r.Name,
			Code:           r.Code,
			AvailableFrom:  r.AvailableFrom,
			AvailableUntil: r.AvailableUntil,
			CostRate:       r.CostRate,
			Skills:         r.Skills,
		})
	}

	return s
}

// Parameters 用文件中设置的字段覆盖 base
func (f *File) Parameters(base optimizer.Parameters) optimizer.Parameters {
	p := f.Optimizer
	if p.PopulationSize != nil {
		base.PopulationSize = *p.PopulationSize
	}
	if p.MaxGenerations != nil {
		base.MaxGenerations = *p.MaxGenerations
	}
	if p.MutationRate != nil {
		base.MutationRate = *p.MutationRate
	}
	if p.CrossoverRate != nil {
		base.CrossoverRate = *p.CrossoverRate
	}
	if p.ElitismRate != nil {
		base.ElitismRate = *p.ElitismRate
	}
	if p.TournamentSize != nil {
		base.TournamentSize = *p.TournamentSize
	}
	if p.ConvergenceThreshold != nil {
		base.ConvergenceThreshold = *p.ConvergenceThreshold
	}
	if p.ConvergenceWindow != nil {
		base.ConvergenceWindow = *p.ConvergenceWindow
	}
	if p.Seed != nil {
		base.Seed = *p.Seed
	}
	return base
}
