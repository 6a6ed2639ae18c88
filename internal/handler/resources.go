package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/utils"
)

func (h *Handler) GetAllResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.repository.GetAllResources()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取资源列表成功", resources)
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type           string    `json:"type" validate:"required,oneof=worker equipment material"`
		Name           string    `json:"name" validate:"required"`
		Code           string    `json:"code"`
		AvailableFrom  time.Time `json:"availableFrom" validate:"required"`
		AvailableUntil time.Time `json:"availableUntil" validate:"required"`
		CostRate       float64   `json:"costRate" validate:"gte=0"`
		Skills         []string  `json:"skills" validate:"dive,required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resource := &domain.Resource{
		Type:           domain.ResourceType(req.Type),
		Name:           req.Name,
		Code:           req.Code,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		CostRate:       req.CostRate,
		Skills:         req.Skills,
	}

	if err := utils.ValidateResourceAvailability(resource); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有指定编号时根据名称的拼音生成
	if resource.Code == "" {
		resource.Code = utils.GenerateCodeFromName(resource.Name)
	}

	if err := h.repository.CreateResource(resource); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "resources_code_key":
				h.badRequest(w, r, errors.New("资源编号已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "资源创建成功", resource)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	resource := r.Context().Value(ResourceCtx).(*domain.Resource)
	h.successResponse(w, r, "获取资源成功", resource)
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	resource := r.Context().Value(ResourceCtx).(*domain.Resource)

	if err := h.repository.DeleteResource(resource.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "资源删除成功", nil)
}
