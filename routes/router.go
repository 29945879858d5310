package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"adboard/config"
	"adboard/controllers"
	"adboard/middleware"
	"adboard/service"
	"adboard/storage"
	"adboard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(posts *service.PostService, images *storage.ImageStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger())
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})
	r.GET("/admin", func(c *gin.Context) {
		c.File("./static/admin.html")
	})
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController()
	postController := controllers.NewPostController(posts, images)
	configController := controllers.NewConfigController()

	// Stored images are public once their identifier is known.
	r.GET("/uploads/:filename", postController.GetImage)

	api := r.Group("/api")

	api.GET("/posts", postController.ListPosts)
	api.GET("/contact", configController.GetContact)
	api.GET("/check_login", authController.Status)

	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)

	protected := api.Group("")
	protected.Use(middleware.AdminRequired(), middleware.RateLimitMiddleware())
	protected.POST("/logout", authController.Logout)
	protected.GET("/me", authController.Me)
	protected.POST("/upload", postController.UploadImage)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/uploads/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "asset not found"})
			return
		}
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
