package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/repository"
)

type Handler struct {
	validate       *validator.Validate
	config         *config.Config
	repository     *repository.Repository
	translator     ut.Translator
	mailChannel    *amqp.Channel
	redisClient    *redis.Client
	metrics        *metrics.MetricsEmitter
	metricsHandler http.Handler

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	mailCh *amqp.Channel,
	rdb *redis.Client,
	emitter *metrics.MetricsEmitter,
	metricsHandler http.Handler,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:       validate,
		config:         cfg,
		repository:     repo,
		translator:     trans,
		mailChannel:    mailCh,
		redisClient:    rdb,
		metrics:        emitter,
		metricsHandler: metricsHandler,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", h.metricsHandler)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.GetAllResources)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateResource)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.resource)
				r.Get("/", h.GetResource)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteResource)
			})
		})

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Use(h.project)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.GetProjectTasks)
				r.With(h.RequiredRole([]domain.Role{domain.RoleProjectManager, domain.RoleAdmin})).Post("/", h.CreateTask)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.task)
					r.With(h.RequiredRole([]domain.Role{domain.RoleProjectManager, domain.RoleAdmin})).Delete("/", h.DeleteTask)
				})
			})

			r.Route("/optimizations", func(r chi.Router) {
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleProjectManager, domain.RoleAdmin})).Post("/", h.CreateOptimization)
				r.Route("/{option}", func(r chi.Router) {
					r.Use(h.optimizationRun)
					r.Get("/", h.GetOptimization)
				})
			})
		})
	})
}
