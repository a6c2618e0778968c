package main

import (
	"net/http"
	"time"

	"github.com/artvoid/artvoid-api/config"
	"github.com/artvoid/artvoid-api/controllers"
	"github.com/artvoid/artvoid-api/events"
	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the router needs. Authenticate validates the
// bearer token when one is sent and lets guests through otherwise.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger

	Users    repository.UserRepository
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Gallery  repository.GalleryRepository
	Comments repository.CommentRepository
	Messages repository.MessageRepository
	Settings repository.SettingsRepository

	Hub       *events.Hub
	Images    services.ImageService
	UploadDir string
	UserInfo  services.UserInfoFetcher

	OrderService   *services.OrderService
	AccountService *services.AccountService
	AdminService   *services.AdminService

	Authenticate gin.HandlerFunc
}

// setupRouter creates the router with every /api/v1 route and /metrics
func setupRouter(deps *Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(deps.Config)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orders := controllers.NewOrderController(deps.OrderService, deps.Images, deps.Hub, log)
	catalog := controllers.NewCatalogController(deps.Products, deps.Gallery, deps.Comments, deps.Images, log)
	messages := controllers.NewMessageController(deps.Messages, log)
	users := controllers.NewUserController(deps.AccountService, deps.UserInfo, log)
	admin := controllers.NewAdminController(deps.AdminService, log)
	uploads := controllers.NewUploadController(deps.Images, deps.UploadDir, log)

	artistOrAdmin := middleware.RequireRole(models.RoleEmblos, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus(deps.DB))

		// Locally stored uploads are public
		v1.GET("/uploads/:filename", uploads.GetUploadedFile)
	}

	api := v1.Group("")
	if deps.Authenticate != nil {
		api.Use(deps.Authenticate)
	}
	api.Use(middleware.ResolveActor(deps.Users))
	{
		// Shop catalog
		api.GET("/products", catalog.ListProducts)
		api.POST("/products", adminOnly, catalog.CreateProduct)
		api.DELETE("/products/:id", adminOnly, catalog.DeleteProduct)
		api.PUT("/products/:id/like", catalog.LikeProduct)
		api.GET("/products/:id/comments", catalog.ListProductComments)
		api.POST("/products/:id/comments", catalog.CreateProductComment)

		// Gallery
		api.GET("/gallery", catalog.ListGallery)
		api.POST("/gallery", artistOrAdmin, catalog.CreateGalleryItem)
		api.DELETE("/gallery/:id", artistOrAdmin, catalog.DeleteGalleryItem)
		api.PUT("/gallery/:id/like", catalog.LikeGalleryItem)
		api.GET("/gallery/:id/comments", catalog.ListGalleryComments)
		api.POST("/gallery/:id/comments", catalog.CreateGalleryComment)

		// Contact messages
		api.POST("/messages", messages.SendMessage)
		api.GET("/messages", adminOnly, messages.GetMessages)
		api.DELETE("/messages/:id", adminOnly, messages.DeleteMessage)

		// Orders: guests may place them, everything else needs a profile
		api.POST("/orders", orders.CreateOrder)
		authed := api.Group("", middleware.RequireActor())
		authed.GET("/orders", orders.ListOrders)
		authed.GET("/orders/open", artistOrAdmin, orders.OpenTasks)
		authed.GET("/orders/stream", orders.Stream)
		authed.GET("/orders/:id", orders.GetOrder)
		authed.DELETE("/orders/:id", orders.DeleteOrder)
		authed.POST("/orders/:id/claim", artistOrAdmin, orders.ClaimOrder)
		authed.POST("/orders/:id/price", artistOrAdmin, orders.SubmitPrice)
		authed.POST("/orders/:id/approve", adminOnly, orders.ApprovePrice)
		authed.PUT("/orders/:id/delivery", artistOrAdmin, orders.UpdateDelivery)
		authed.POST("/orders/:id/unassign", adminOnly, orders.UnassignOrder)

		// Uploads
		authed.POST("/uploads", uploads.UploadImage)

		// Admin console
		api.GET("/admin/password", admin.PasswordStatus)
		api.POST("/admin/password", admin.SetPassword)
		api.POST("/admin/verify", admin.VerifyPassword)
		api.GET("/admin/settings", artistOrAdmin, admin.GetSettings)
		api.PUT("/admin/settings", adminOnly, admin.UpdateSettings)
		api.GET("/admin/users", adminOnly, admin.ListUsers)
		api.PUT("/admin/users/:id/role", adminOnly, admin.UpdateRole)

		// Accounts
		api.POST("/users/google-auth", users.GoogleAuth)
		api.POST("/auth/register", users.Register)
		api.POST("/auth/login", users.Login)
		authed.GET("/users/me", users.GetMyProfile)
		authed.PUT("/users/me", users.UpdateMyProfile)
		authed.PUT("/users/:id/likes", users.UpdateLikes)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg == nil || len(cfg.CORSOrigins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = cfg.CORSOrigins
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Art Void API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Database not configured",
				},
			})
			return
		}

		// Get the underlying SQL database to check connection
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		// Ping the database to verify connection
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		// Get list of tables
		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
