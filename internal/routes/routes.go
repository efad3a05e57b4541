package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quickcart/quickcart-golang/internal/handlers"
	"github.com/quickcart/quickcart-golang/internal/middleware"
)

// corsConfig allows the storefront origin(s) to talk to us with the
// Authorization header. CORS_ORIGINS is a comma-separated list; the
// default covers local Vite development.
func corsConfig() cors.Config {
	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything else.
	router.Use(cors.New(corsConfig()))

	// --- Health Check (Public) ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Auth Routes ---
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.GET("/me", middleware.AuthMiddleware(), h.Me)
	}

	// --- Product Routes ---
	// Reads are public; writes are admin-only.
	products := router.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)

		products.POST("", middleware.AuthMiddleware(), middleware.AdminMiddleware(h.DB), h.CreateProduct)
		products.PUT("/:id", middleware.AuthMiddleware(), middleware.AdminMiddleware(h.DB), h.UpdateProduct)
		products.DELETE("/:id", middleware.AuthMiddleware(), middleware.AdminMiddleware(h.DB), h.DeleteProduct)
	}

	// --- Order Routes (Login Required) ---
	orders := router.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/myorders", h.GetMyOrders)
		orders.GET("/:id", h.GetOrder)

		// Cross-user listing stays behind the admin gate.
		orders.GET("", middleware.AdminMiddleware(h.DB), h.GetAllOrders)
	}

	// --- Admin-Only Routes ---
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware(h.DB))
	{
		admin.POST("/assistant", h.AskAssistant)
	}

	return router
}
