package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/utils"
)

func (h *Handler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID := r.Context().Value(ProjectIDCtx).(int64)

	tasks, err := h.repository.GetTasksByProjectID(projectID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID := r.Context().Value(ProjectIDCtx).(int64)

	var req struct {
		Name           string    `json:"name" validate:"required"`
		StartDate      time.Time `json:"startDate" validate:"required"`
		EndDate        time.Time `json:"endDate" validate:"required"`
		EstimatedCost  float64   `json:"estimatedCost" validate:"gte=0"`
		RequiredSkills []string  `json:"requiredSkills" validate:"dive,required"`
		Dependencies   []int64   `json:"dependencies" validate:"dive,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	task := &domain.Task{
		ProjectID:      projectID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		EstimatedCost:  req.EstimatedCost,
		RequiredSkills: req.RequiredSkills,
		Dependencies:   req.Dependencies,
	}

	if err := utils.ValidateTaskWindow(task); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 前置任务必须是同一个项目中已有的任务，新任务不可能成为已有任务的前置，所以不会产生环
	projectTasks, err := h.repository.GetTasksByProjectID(projectID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateTaskDependencies(task, projectTasks); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务创建成功", task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if err := h.repository.DeleteTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务删除成功", nil)
}
