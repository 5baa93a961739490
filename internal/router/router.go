package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/middleware"
	"github.com/threedv/saiban/internal/modules/handler"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/telemetry"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	AccountHandler  *handler.AccountHandler
	EmployeeHandler *handler.EmployeeHandler
	ProjectHandler  *handler.ProjectHandler
	BoardHandler    *handler.BoardHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	if !d.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(middleware.IPFilter(d.Config, d.Log))

	store := cookie.NewStore([]byte(d.Config.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   d.Config.Session.MaxAge,
		HttpOnly: true,
		Secure:   !d.Config.IsDevelopment(),
	})
	r.Use(sessions.Sessions(d.Config.Session.Name, store))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.AccountHandler.Login)
			auth.POST("/logout", d.AccountHandler.Logout)
			auth.POST("/password", middleware.RequireAuth(), d.AccountHandler.ChangePassword)
		}

		projects := v1.Group("/projects", middleware.RequireAuth())
		{
			projects.POST("", d.ProjectHandler.CreateProject)
			projects.GET("", d.ProjectHandler.ListProjects)
			projects.GET("/:number", d.ProjectHandler.GetProject)
			projects.PATCH("/:number", d.ProjectHandler.UpdateProject)
			projects.DELETE("/:number", middleware.RequireAdmin(), d.ProjectHandler.DeleteProject)
		}

		boardGroup := v1.Group("/board", middleware.RequireAuth())
		{
			boardGroup.GET("/projects", d.BoardHandler.ListRecentProjects)
			boardGroup.GET("/projects/:caseNumber", d.BoardHandler.GetProjectByCaseNumber)
		}

		employees := v1.Group("/employees", middleware.RequireAuth(), middleware.RequireAdmin())
		{
			employees.POST("", d.EmployeeHandler.RegisterEmployee)
			employees.GET("", d.EmployeeHandler.ListEmployees)
			employees.PATCH("/:employeeID", d.EmployeeHandler.UpdateEmployee)
		}
	}
	return r
}
