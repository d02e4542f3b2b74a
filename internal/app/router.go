package app

import (
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/middleware"
	"julekalender_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config, users middleware.UserFinder) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public
	a.registerPublicRoutes(router, c)

	// 2. players
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, users))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerTaskRoutes(authGroup, c)
	}

	// 3. admins
	a.registerAdminRoutes(router, c, cfg, users)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/time", c.health.ServerTime)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/leaderboard", c.user.GetLeaderboard)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/user", c.user.GetUser)
	rg.DELETE("/user", c.user.DeleteUser)
	rg.GET("/user/results", c.user.GetResults)
	rg.GET("/user/results/today", c.user.GetTodayResult)
}

func (a *App) registerTaskRoutes(rg *gin.RouterGroup, c *controllers) {
	task := rg.Group("/task")
	{
		task.GET("", c.task.GetTask)
		task.POST("/answer", c.task.SubmitAnswer)
		task.GET("/hints", c.task.GetHints)
		task.POST("/hints/unlock", c.task.UnlockHint)
		task.GET("/attempts", c.task.GetAttempts)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config, users middleware.UserFinder) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg, users), middleware.AdminMiddleware())
	{
		admin.GET("/tasks", c.adminTask.ListTasks)
		admin.GET("/tasks/:date", c.adminTask.GetTask)
		admin.POST("/tasks/:date", c.adminTask.CreateTask)
		admin.PATCH("/tasks/:date", c.adminTask.UpdateTask)
		admin.DELETE("/tasks/:date", c.adminTask.DeleteTask)
		admin.GET("/tasks/:date/hints", c.adminTask.ListHints)
		admin.POST("/tasks/:date/hints", c.adminTask.AddHint)
		admin.POST("/tasks/:date/media", c.adminTask.UploadMedia)
		admin.GET("/tasks/:date/results", c.adminTask.GetResults)
	}
}
