package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/predictor"
)

// 训练成本预测模型时最多使用的历史记录条数
const costHistoryLimit = 2000

// 只有持有锁的请求才能释放锁
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type optimizationRequest struct {
	PopulationSize       *int       `json:"populationSize" validate:"omitempty,min=1,max=5000"`
	MaxGenerations       *int       `json:"maxGenerations" validate:"omitempty,min=1,max=10000"`
	MutationRate         *float64   `json:"mutationRate" validate:"omitempty,min=0,max=1"`
	CrossoverRate        *float64   `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
	ElitismRate          *float64   `json:"elitismRate" validate:"omitempty,min=0,max=1"`
	TournamentSize       *int       `json:"tournamentSize" validate:"omitempty,min=1"`
	ConvergenceThreshold *float64   `json:"convergenceThreshold" validate:"omitempty,min=0"`
	ConvergenceWindow    *int       `json:"convergenceWindow" validate:"omitempty,min=2"`
	Seed                 *int64     `json:"seed"`
	BudgetLimit          *float64   `json:"budgetLimit" validate:"omitempty,min=0"`
	Deadline             *time.Time `json:"deadline"`
}

func (h *Handler) CreateOptimization(w http.ResponseWriter, r *http.Request) {
	projectID := r.Context().Value(ProjectIDCtx).(int64)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 请求体是可选的，为空时全部使用默认参数
	var req optimizationRequest
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := h.buildParameters(req, time.Now())
	constraints := domain.ConstraintSet{
		BudgetLimit: req.BudgetLimit,
		Deadline:    req.Deadline,
	}

	// 获取项目的任务和全部资源
	tasks, err := h.repository.GetTasksByProjectID(projectID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	resources, err := h.repository.GetAllResources()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	snapshot := optimizer.Snapshot{
		Tasks:       make([]domain.Task, 0, len(tasks)),
		Resources:   make([]domain.Resource, 0, len(resources)),
		Constraints: constraints,
	}
	for _, t := range tasks {
		snapshot.Tasks = append(snapshot.Tasks, *t)
	}
	for _, res := range resources {
		snapshot.Resources = append(snapshot.Resources, *res)
	}

	// 同一个项目同一时间只允许一次优化
	lockToken, acquired, err := h.acquireOptimizationLock(projectID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.metrics.EmitErrorMetrics("locked")
		h.errorResponse(w, r, "该项目已有正在进行的优化，请稍后再试")
		return
	}
	defer h.releaseOptimizationLock(projectID, lockToken)

	opts := []optimizer.Option{optimizer.WithLogger(slog.Default())}
	if p := h.buildPredictor(snapshot.Resources); p != nil {
		opts = append(opts, optimizer.WithPredictor(p))
	}

	o, err := optimizer.New(params, snapshot, opts...)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrInvalidInput):
			h.metrics.EmitErrorMetrics("invalid_input")
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 超时后返回目前为止的最佳方案
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Optimizer.RunTimeout)*time.Second)
	defer cancel()

	result, err := o.Run(ctx)
	if err != nil {
		h.metrics.EmitErrorMetrics("run")
		h.internalServerError(w, r, err)
		return
	}

	plan, err := optimizer.Synthesize(result, snapshot, o.Evaluator(), nil)
	if err != nil {
		h.metrics.EmitErrorMetrics("synthesize")
		h.internalServerError(w, r, err)
		return
	}

	run := &domain.OptimizationRun{
		ProjectID:   projectID,
		Parameters:  toDomainParameters(params),
		Constraints: constraints,
		Plan:        plan,
		CreatedBy:   myInfo.ID,
	}
	if err := h.repository.InsertOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.metrics.EmitRunMetrics(projectID, plan)

	// 通知失败不影响已经保存的结果
	for _, msg := range optimizationMails(myInfo, run) {
		if err := h.publishMail(msg); err != nil {
			slog.Error("无法发送优化通知邮件", "type", msg.Type, "runID", run.ID, "error", err)
		}
	}

	if result.Interrupted() {
		h.successResponse(w, r, "优化超时，已返回目前为止的最佳方案", run)
		return
	}
	h.successResponse(w, r, "优化完成", run)
}

func (h *Handler) GetOptimization(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)
	h.successResponse(w, r, "获取优化结果成功", run)
}

// buildParameters 以配置中的参数为基础，用请求中设置的字段覆盖，未指定种子时使用 now
func (h *Handler) buildParameters(req optimizationRequest, now time.Time) optimizer.Parameters {
	cfg := h.config.Optimizer

	params := optimizer.Parameters{
		PopulationSize:       cfg.PopulationSize,
		MaxGenerations:       cfg.MaxGenerations,
		MutationRate:         cfg.MutationRate,
		CrossoverRate:        cfg.CrossoverRate,
		ElitismRate:          cfg.ElitismRate,
		TournamentSize:       cfg.TournamentSize,
		ConvergenceThreshold: cfg.ConvergenceThreshold,
		ConvergenceWindow:    cfg.ConvergenceWindow,
		Workers:              cfg.Workers,
		Seed:                 now.UnixNano(),
		Weights: optimizer.FitnessWeights{
			Cost:             cfg.Weights.Cost,
			Utilization:      cfg.Weights.Utilization,
			ViolationPenalty: cfg.Weights.ViolationPenalty,
			Baseline:         cfg.Weights.Baseline,
			NeutralCostScore: cfg.Weights.NeutralCostScore,
			Predictor:        cfg.Weights.Predictor,
		},
	}

	if req.PopulationSize != nil {
		params.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		params.MaxGenerations = *req.MaxGenerations
	}
	if req.MutationRate != nil {
		params.MutationRate = *req.MutationRate
	}
	if req.CrossoverRate != nil {
		params.CrossoverRate = *req.CrossoverRate
	}
	if req.ElitismRate != nil {
		params.ElitismRate = *req.ElitismRate
	}
	if req.TournamentSize != nil {
		params.TournamentSize = *req.TournamentSize
	}
	if req.ConvergenceThreshold != nil {
		params.ConvergenceThreshold = *req.ConvergenceThreshold
	}
	if req.ConvergenceWindow != nil {
		params.ConvergenceWindow = *req.ConvergenceWindow
	}
	if req.Seed != nil {
		params.Seed = *req.Seed
	}

	return params
}

// buildPredictor 在配置了预测权重时训练成本预测模型，历史数据不足时不使用预测
func (h *Handler) buildPredictor(resources []domain.Resource) optimizer.Predictor {
	cfg := h.config.Optimizer
	if cfg.Weights.Predictor <= 0 {
		return nil
	}

	records, err := h.repository.GetRecentCostRecords(costHistoryLimit)
	if err != nil {
		slog.Error("无法获取历史成本记录", "error", err)
		return nil
	}

	model, err := predictor.Train(records, resources, predictor.Options{
		MinSamples:     cfg.Predictor.MinSamples,
		LearningRate:   cfg.Predictor.LearningRate,
		Regularization: cfg.Predictor.Regularization,
		Iterations:     cfg.Predictor.Iterations,
	})
	if err != nil {
		switch {
		case errors.Is(err, predictor.ErrInsufficientHistory):
			slog.Warn("历史成本记录不足，不使用成本预测", "records", len(records))
		default:
			slog.Error("无法训练成本预测模型", "error", err)
		}
		return nil
	}

	return model
}

func optimizationLockKey(projectID int64) string {
	return fmt.Sprintf("optimization_lock_%d", projectID)
}

func (h *Handler) acquireOptimizationLock(projectID int64) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	token := uuid.NewString()
	ttl := time.Duration(h.config.Optimizer.LockTTL) * time.Second

	acquired, err := h.redisClient.SetNX(ctx, optimizationLockKey(projectID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}

	return token, acquired, nil
}

func (h *Handler) releaseOptimizationLock(projectID int64, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := releaseLockScript.Run(ctx, h.redisClient, []string{optimizationLockKey(projectID)}, token).Err(); err != nil {
		// 锁会在 TTL 后自动过期
		slog.Error("无法释放优化锁", "projectID", projectID, "error", err)
	}
}

func toDomainParameters(p optimizer.Parameters) domain.OptimizationParameters {
	return domain.OptimizationParameters{
		PopulationSize:       p.PopulationSize,
		MaxGenerations:       p.MaxGenerations,
		MutationRate:         p.MutationRate,
		CrossoverRate:        p.CrossoverRate,
		ElitismRate:          p.ElitismRate,
		TournamentSize:       p.TournamentSize,
		ConvergenceThreshold: p.ConvergenceThreshold,
		ConvergenceWindow:    p.ConvergenceWindow,
		Seed:                 p.Seed,
	}
}

// optimizationMails 生成优化完成后需要发送的邮件，存在严重警告时额外发送预算告警
func optimizationMails(user *domain.User, run *domain.OptimizationRun) []domain.MailMessage {
	plan := run.Plan

	mails := []domain.MailMessage{
		{
			Type: domain.MailTypeOptimizationCompleted,
			To:   user.Email,
			Data: domain.OptimizationCompletedMailData{
				FullName:       user.FullName,
				ProjectID:      run.ProjectID,
				RunID:          run.ID,
				State:          plan.Summary.State,
				BestFitness:    plan.Summary.BestFitness,
				OptimizedCost:  plan.Metrics.OptimizedCost,
				CostSavings:    plan.Metrics.CostSavings,
				WarningCount:   len(plan.Warnings),
				RunTimeMillis:  plan.Metrics.RunTimeMillis,
				GenerationsRun: plan.Summary.Generations,
			},
		},
	}

	if !plan.HasCriticalWarning() {
		return mails
	}

	data := domain.BudgetAlertMailData{
		FullName:      user.FullName,
		ProjectID:     run.ProjectID,
		RunID:         run.ID,
		OptimizedCost: plan.Metrics.OptimizedCost,
		Messages:      make([]string, 0),
	}
	if run.Constraints.BudgetLimit != nil {
		data.BudgetLimit = *run.Constraints.BudgetLimit
	}
	for _, w := range plan.Warnings {
		if w.Severity == domain.SeverityCritical {
			data.Messages = append(data.Messages, w.Message)
		}
	}

	return append(mails, domain.MailMessage{
		Type: domain.MailTypeBudgetAlert,
		To:   user.Email,
		Data: data,
	})
}
