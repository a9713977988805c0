package router

import "github.com/gin-gonic/gin"

// Module is a feature slice (auth, users, songs, gifts, debug) that mounts its
// routes under /api.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and the middleware shared by every /api route,
// then mounts them in one pass.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddIf adds mod only when enabled, for modules behind a config toggle.
func (r *Registry) AddIf(enabled bool, mod func() Module) {
	if enabled {
		r.Add(mod())
	}
}

// RegisterAll applies the shared middleware and mounts every module. It must
// run once, after all Add calls.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
