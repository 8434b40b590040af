package server

import (
	"time"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupLoginRoutes(router, deps)
	setupAdminRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		mongoStatus := "ok"
		if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := redisClient.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   mongoStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Debug("Detailed health check endpoint requested")

		c.JSON(200, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database": gin.H{
					"mongodb": getStatus(isMongoConnected(mongodb, c)),
					"redis":   getStatus(isRedisConnected(redisClient.Client, c)),
				},
				"services": gin.H{
					"session": cfg.Session.Backend,
					"storage": cfg.Storage.Provider,
					"queue":   getQueueStatus(deps.RabbitMQ),
				},
			},
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.BlogHandler

	if deps.Config.Storage.Provider == "local" {
		router.Static("/uploads", deps.Config.Storage.Local.Path)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/blogs", setRouteName("listBlogs"), handler.ListBlogs)
		api.GET("/blogs/featured", setRouteName("featuredBlogs"), handler.FeaturedBlogs)
		api.GET("/blogs/:slug", setRouteName("blogBySlug"), handler.BlogBySlug)
		api.GET("/blogs/:slug/related", setRouteName("relatedBlogs"), handler.RelatedBlogs)
		api.GET("/tags", setRouteName("listTags"), handler.Tags)
	}
}

func setupLoginRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.AuthHandler
	loginPath := deps.Config.Session.LoginPath

	router.GET(loginPath, setRouteName("loginPage"), handler.LoginPage)
	router.POST(loginPath, setRouteName("login"), handler.Login)
}

func setupAdminRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := deps.AuthMiddleware
	pages := deps.AdminHandler

	// Apply route name FIRST, then the session guard
	admin := router.Group("/admin")
	{
		admin.GET("/blogs", setRouteName("adminBlogs"), authMiddleware.RequireSession(), pages.List)
		admin.GET("/blogs/create", setRouteName("adminNewBlog"), authMiddleware.RequireSession(), pages.New)
		admin.GET("/blogs/:id/edit", setRouteName("adminEditBlog"), authMiddleware.RequireSession(), pages.Edit)
		admin.POST("/blogs", setRouteName("adminCreateBlog"), authMiddleware.RequireSession(), pages.Create)
		admin.POST("/blogs/:id", setRouteName("adminUpdateBlog"), authMiddleware.RequireSession(), pages.Update)
		admin.POST("/blogs/:id/delete", setRouteName("adminDeleteBlog"), authMiddleware.RequireSession(), pages.Delete)
		admin.POST("/logout", setRouteName("logout"), authMiddleware.RequireSession(), deps.AuthHandler.Logout)
	}

	api := router.Group("/api/v1/admin")
	{
		api.GET("/blogs", setRouteName("adminListBlogs"), authMiddleware.RequireSession(), deps.BlogHandler.AdminListBlogs)
		api.GET("/blogs/stats", setRouteName("adminBlogStats"), authMiddleware.RequireSession(), deps.BlogHandler.AdminStats)
	}
}

func setRouteName(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("route_name", name)
		c.Next()
	}
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}

func getQueueStatus(rabbitMQ *clients.RabbitMQ) string {
	if rabbitMQ == nil {
		return "disabled"
	}
	if rabbitMQ.Conn.IsClosed() {
		return "disconnected"
	}
	return "connected"
}
