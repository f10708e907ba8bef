package handler

import (
	"github.com/gin-gonic/gin"
)

// Registrar mounts a record kind's endpoints on a router group.
type Registrar interface {
	Register(group gin.IRoutes)
}

// ResourceRoute binds a Registrar to its collection path.
type ResourceRoute struct {
	Path    string
	Handler Registrar
}

// Routes collects the handlers and guards served under the API prefix.
type Routes struct {
	Users     *UserHandler
	Exports   *ExportHandler
	Metrics   *MetricsHandler
	Resources []ResourceRoute

	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	LoginLimit   gin.HandlerFunc
}

// RegisterRoutes wires the operational endpoints on the engine root and the
// API endpoints under prefix.
func RegisterRoutes(engine *gin.Engine, prefix string, routes Routes) {
	if routes.Metrics != nil {
		engine.GET("/health", routes.Metrics.Health)
		engine.GET("/ready", routes.Metrics.Ready)
		engine.GET("/metrics", routes.Metrics.Prometheus)
	}

	api := engine.Group(prefix)

	users := api.Group("/user")
	users.GET("/info", chain(routes.OptionalAuth, routes.Users.Info)...)
	users.GET("/list", chain(routes.RequireAuth, routes.Users.List)...)
	users.POST("/login", chain(routes.LoginLimit, routes.Users.Login)...)
	users.POST("/logout", routes.Users.Logout)

	protected := api.Group("")
	if routes.RequireAuth != nil {
		protected.Use(routes.RequireAuth)
	}
	if routes.Exports != nil {
		students := protected.Group("/students")
		students.GET("/export-excel", routes.Exports.Spreadsheet)
		students.GET("/export-word", routes.Exports.Document)
		students.GET("/export-pdf", routes.Exports.PDF)
		students.GET("/export-csv", routes.Exports.CSV)
	}
	for _, route := range routes.Resources {
		route.Handler.Register(protected.Group(route.Path))
	}
}

func chain(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
