package handler

type ContextKey string

var (
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	ProjectIDCtx       ContextKey = "projectID"
	ResourceCtx        ContextKey = "resource"
	TaskCtx            ContextKey = "task"
	OptimizationRunCtx ContextKey = "optimizationRun"
)
