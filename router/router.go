package router

import (
	"net/http"
	"time"

	"economic/api"
	"economic/config"
	_ "economic/docs"
	"economic/middleware"
	"economic/models"
	"economic/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter builds the REST backend.
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger("api"), CORSMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := api.NewAuthHandler(cfg)
	auth := r.Group("/auth")
	{
		limited := auth.Group("", middleware.LoginRateLimit(10, time.Minute))
		limited.POST("/login", authHandler.Login)
		limited.POST("/register", authHandler.Register)

		auth.PATCH("/admin/update-user-roles/:id",
			middleware.JWTAuth(), middleware.RequireUserRole(models.RoleAdmin), authHandler.UpdateUserRoles)
	}

	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth())
	adminOnly := middleware.RequireUserRole(models.RoleAdmin)

	userHandler := api.NewUserHandler()
	users := authorized.Group("/users")
	{
		users.GET("", adminOnly, userHandler.List)
		users.GET("/profile", userHandler.Profile)
		users.PATCH("/update-profile", userHandler.UpdateProfile)
	}

	for _, kind := range []string{models.TypeIncome, models.TypeExpense} {
		h := api.NewTransactionHandler(kind)
		g := authorized.Group("/" + kind)
		g.GET("", adminOnly, h.List)
		g.GET("/me", h.ListMine)
		g.GET("/export", h.ExportCSV)
		g.GET("/:id", h.Get)
		g.POST("", h.Create)
		g.PATCH("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}

	categoryHandler := api.NewCategoryHandler()
	category := authorized.Group("/category")
	{
		category.GET("", categoryHandler.List)
		category.GET("/:id", categoryHandler.Get)
		category.POST("", categoryHandler.Create)
		category.PATCH("/:id", categoryHandler.Update)
		category.DELETE("/:id", categoryHandler.Delete)
	}

	aiHandler := api.NewAIHandler(service.NewAIService(&cfg.AI, nil))
	ai := authorized.Group("/ai")
	{
		ai.POST("/completion", aiHandler.Completion)
		ai.POST("/contextual-completion", aiHandler.ContextualCompletion)
		ai.GET("/history", aiHandler.History)
	}

	r.NoRoute(func(c *gin.Context) {
		api.NotFound(c, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
	})

	return r
}

// CORSMiddleware allows the dashboard and other origins to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
