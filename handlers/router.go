package handlers

import (
	"prompt-cms/events"
	"prompt-cms/helper"
	"prompt-cms/middleware"
	"prompt-cms/repositories"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs to serve requests.
type Deps struct {
	Helper     *helper.HTTPHelper
	Services   PageServices
	Health     repositories.HealthRepository
	Hub        *events.Hub
	Production bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	s := d.Services
	authHandler := NewAuthHandler(s.Auth, s.Profiles, s.Cookie, d.Helper)
	promptHandler := NewPromptHandler(s.Prompts, d.Helper)
	categoryHandler := NewCategoryHandler(s.Categories, d.Helper)
	tagHandler := NewTagHandler(s.Tags, d.Helper)
	publicHandler := NewPublicHandler(s.Public, d.Helper)
	dashboardHandler := NewDashboardHandler(s.Dashboard, d.Helper)
	pages := NewPageHandler(s)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())
	router.Use(middleware.Authenticate(s.Auth, s.Cookie))

	router.GET("/health", Health(d.Health))
	if d.Hub != nil {
		router.GET("/ws/updates", Updates(d.Hub))
	}

	requireAdmin := middleware.RequireAdmin(s.Policy)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandler.SignUp)
			auth.POST("/signin", authHandler.SignIn)
			auth.POST("/signout", middleware.RequireUser(), authHandler.SignOut)
			auth.GET("/me", middleware.RequireUser(), authHandler.Me)
		}

		profile := v1.Group("/profile", middleware.RequireUser())
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", authHandler.UpdateProfile)
		}

		public := v1.Group("/public")
		{
			public.GET("/prompts", publicHandler.GetPublicPrompts)
			public.GET("/prompts/:id", publicHandler.GetPublicPrompt)
			public.GET("/categories", publicHandler.GetPublicCategories)
			public.GET("/tags", publicHandler.GetPublicTags)
		}

		admin := v1.Group("/admin", requireAdmin)
		{
			admin.GET("/stats", dashboardHandler.GetStats)

			prompts := admin.Group("/prompts")
			{
				prompts.POST("", promptHandler.CreatePrompt)
				prompts.GET("", promptHandler.GetPrompts)
				prompts.GET("/:id", promptHandler.GetPrompt)
				prompts.PUT("/:id", promptHandler.UpdatePrompt)
				prompts.DELETE("/:id", promptHandler.DeletePrompt)
				prompts.POST("/bulk-update", promptHandler.BulkUpdatePrompts)
				prompts.POST("/bulk-delete", promptHandler.BulkDeletePrompts)
			}

			categories := admin.Group("/categories")
			{
				categories.POST("", categoryHandler.CreateCategory)
				categories.GET("", categoryHandler.GetCategories)
				categories.PUT("/:name", categoryHandler.UpdateCategory)
				categories.DELETE("/:name", categoryHandler.DeleteCategory)
			}

			tags := admin.Group("/tags")
			{
				tags.POST("", tagHandler.CreateTag)
				tags.GET("", tagHandler.GetTags)
				tags.PUT("/:name", tagHandler.UpdateTag)
				tags.DELETE("/:name", tagHandler.DeleteTag)
			}
		}
	}

	router.GET("/", pages.Home)
	router.GET("/public", pages.PublicList)
	router.GET("/prompt/:id", pages.PromptDetail)
	router.GET("/signin", pages.SignInPage)
	router.POST("/signin", pages.SignIn)
	router.POST("/signup", pages.SignUp)
	router.POST("/signout", pages.SignOut)

	dashboard := router.Group("/dashboard", middleware.RequireUser())
	{
		dashboard.GET("", pages.Dashboard)
		dashboard.POST("/profile", pages.UpdateProfile)
	}

	admin := router.Group("/admin", requireAdmin)
	{
		admin.GET("", pages.Admin)
		admin.POST("/prompts", pages.CreatePrompt)
		admin.POST("/prompts/bulk", pages.BulkPrompts)
		admin.POST("/prompts/:id", pages.UpdatePrompt)
		admin.POST("/prompts/:id/delete", pages.DeletePrompt)
		admin.POST("/categories", pages.CreateCategory)
		admin.POST("/categories/:name", pages.UpdateCategory)
		admin.POST("/categories/:name/delete", pages.DeleteCategory)
		admin.POST("/tags", pages.CreateTag)
		admin.POST("/tags/:name", pages.UpdateTag)
		admin.POST("/tags/:name/delete", pages.DeleteTag)
	}

	return router
}
