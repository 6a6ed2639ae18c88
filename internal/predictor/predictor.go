package predictor

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

var ErrInsufficientHistory = errors.New("历史成本记录不足")

// 没有足够信息时返回的中性得分
const neutralScore = 0.5

// 超过该天数的工期按该天数处理，避免特征尺度相差太大
const maxDurationDays = 60.0

type Options struct {
	MinSamples     int
	LearningRate   float64
	Regularization float64
	Iterations     int
}

func DefaultOptions() Options {
	return Options{
		MinSamples:     20,
		LearningRate:   0.1,
		Regularization: 0,
		Iterations:     1000,
	}
}

// CostModel 根据历史记录学习 实际成本/预估成本 的比例，用于预测方案的超支风险
// 训练完成后只读，可以被多个协程同时调用
type CostModel struct {
	theta         []float64 // 截距在前，其余与 features 一一对应
	resourceTypes map[int64]domain.ResourceType
}

// Train 使用历史成本记录训练模型，resources 用于在评分时查找分配对应的资源类型
func Train(records []domain.CostRecord, resources []domain.Resource, opts Options) (*CostModel, error) {
	x := make([][]float64, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, r := range records {
		// 没有预估成本的记录无法计算比例
		if r.EstimatedCost <= 0 || r.ActualCost < 0 {
			continue
		}
		x = append(x, features(r.ResourceType, r.DurationDays, r.Percentage))
		y = append(y, r.ActualCost/r.EstimatedCost)
	}

	if len(x) < max(opts.MinSamples, 1) {
		return nil, fmt.Errorf("%w: 需要 %d 条，实际 %d 条", ErrInsufficientHistory, opts.MinSamples, len(x))
	}

	// goml 的梯度是对全部样本求和的，这里除以样本数使学习率与样本数量无关
	alpha := opts.LearningRate / float64(len(x))
	model := linear.NewLeastSquares(base.BatchGA, alpha, opts.Regularization, opts.Iterations, x, y)
	model.Output = io.Discard

	if err := model.Learn(); err != nil {
		return nil, fmt.Errorf("训练成本预测模型失败: %w", err)
	}

	resourceTypes := make(map[int64]domain.ResourceType, len(resources))
	for _, r := range resources {
		resourceTypes[r.ID] = r.Type
	}

	// 复制学到的参数，预测时不再访问 goml 模型
	theta := make([]float64, len(model.Parameters))
	copy(theta, model.Parameters)

	return &CostModel{
		theta:         theta,
		resourceTypes: resourceTypes,
	}, nil
}

// Ratio 预测一次分配的 实际成本/预估成本 比例
func (m *CostModel) Ratio(resourceType domain.ResourceType, durationDays, percentage float64) float64 {
	prediction := m.theta[0]
	for i, v := range features(resourceType, durationDays, percentage) {
		prediction += v * m.theta[i+1]
	}
	return prediction
}

// Score 实现 optimizer.Predictor。
// 得分为 预估总成本/预测总成本，截断到 [0, 1]，无法预测时返回中性得分。
func (m *CostModel) Score(genome []domain.Allocation) float64 {
	total := 0.0
	predicted := 0.0
	for _, a := range genome {
		ratio := m.Ratio(m.resourceTypes[a.ResourceID], a.DurationDays(), a.Percentage)
		total += a.EstimatedCost
		predicted += a.EstimatedCost * max(0, ratio)
	}

	if total <= 0 || predicted <= 0 {
		return neutralScore
	}

	score := total / predicted
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return neutralScore
	}
	return min(1, max(0, score))
}

// features 将一条记录转换为特征向量：工期、投入比例和资源类型（以材料为基准的哑变量）
func features(resourceType domain.ResourceType, durationDays, percentage float64) []float64 {
	isWorker, isEquipment := 0.0, 0.0
	switch resourceType {
	case domain.ResourceTypeWorker:
		isWorker = 1
	case domain.ResourceTypeEquipment:
		isEquipment = 1
	}

	return []float64{
		min(max(durationDays, 0), maxDurationDays) / maxDurationDays,
		percentage / 100,
		isWorker,
		isEquipment,
	}
}
