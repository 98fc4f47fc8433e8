package app

import (
	"student_dashboard_backend/docs"
	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/middleware"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/logout", c.auth.Logout)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.denylist))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 学生端
		student := authGroup.Group("/student")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/dashboard", c.student.GetDashboard)
			student.POST("/session", c.student.StartSession)
			student.POST("/session/complete", c.student.CompleteSession)
		}

		// 教师端
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.GET("/dashboard", c.teacher.GetDashboard)
			teacher.GET("/export/csv", c.teacher.ExportCSV)
			teacher.POST("/reminder", c.teacher.SendReminder)
			teacher.GET("/student/:id", c.teacher.GetStudent)
			teacher.GET("/sessions", c.teacher.ListSessions)
			teacher.POST("/sessions", c.teacher.CreateSession)
		}
	}
}
