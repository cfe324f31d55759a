package router

import (
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
	// Metrics is optional; /metrics is only routed when it is set.
	Metrics fasthttp.RequestHandler
}

// Info names the service on the index page.
type Info struct {
	Name    string
	Version string
}

type route struct {
	method      string
	path        string
	auth        bool
	description string
	handler     fasthttp.RequestHandler
}

func routes(h Handlers) []route {
	return []route{
		{http.MethodGet, "/health", false, "dependency status", h.Health.Check},

		{http.MethodPost, "/api/v1/auth/register", false, "register and open a session", h.Auth.Register},
		{http.MethodPost, "/api/v1/auth/login", false, "log in, replacing any previous session", h.Auth.Login},
		{http.MethodPost, "/api/v1/auth/logout", false, "revoke the bearer session", h.Auth.Logout},
		{http.MethodPost, "/api/v1/auth/validate", false, "check whether a token is active", h.Auth.Validate},

		{http.MethodGet, "/api/v1/profile", true, "own profile", h.Profile.GetProfile},
		{http.MethodPut, "/api/v1/profile", true, "update own profile", h.Profile.UpdateProfile},

		{http.MethodGet, "/api/v1/tasks", true, "list own tasks", h.Task.GetTasks},
		{http.MethodPost, "/api/v1/tasks", true, "create a task", h.Task.CreateTask},
		{http.MethodGet, "/api/v1/tasks/{id}", true, "get a task", h.Task.GetTask},
		{http.MethodPut, "/api/v1/tasks/{id}", true, "update a task", h.Task.UpdateTask},
		{http.MethodDelete, "/api/v1/tasks/{id}", true, "delete a task", h.Task.DeleteTask},

		{http.MethodGet, "/api/v1/users/{user_id}/tasks", true, "list a user's tasks", h.Task.GetUserTasks},
		{http.MethodGet, "/api/v1/users/{user_id}/stats", true, "task totals per status", h.Task.GetStatusStats},
		{http.MethodGet, "/api/v1/users/{user_id}/stats/categories", true, "task counts per category", h.Task.GetCategoryStats},
	}
}

func New(info Info, handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	table := routes(handlers)
	endpoints := make([]apiHandler.Endpoint, 0, len(table)+2)
	for _, rt := range table {
		h := rt.handler
		if rt.auth {
			h = authMiddleware(h)
		}
		r.Handle(rt.method, rt.path, h)
		endpoints = append(endpoints, apiHandler.Endpoint{
			Method:      rt.method,
			Path:        rt.path,
			Auth:        rt.auth,
			Description: rt.description,
		})
	}

	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
		endpoints = append(endpoints, apiHandler.Endpoint{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"})
	}

	r.GET("/", apiHandler.NewInfoHandler(info.Name, info.Version, endpoints).Index)

	return r
}
