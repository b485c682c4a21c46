package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amoslue/what-the-food/internal/menu"
	"github.com/amoslue/what-the-food/internal/middleware"
	"github.com/amoslue/what-the-food/internal/pipeline"
)

// New builds the gateway router: the menu pipeline surface plus
// health, behind CORS for the browser origins.
func New(service *pipeline.Service, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	menuHandler := menu.NewHandler(service)

	menus := r.Group("/menus")
	{
		menus.POST("/process", menuHandler.Process)
		menus.GET("/status", menuHandler.Status)
		menus.GET("/events", menuHandler.Events)
		menus.POST("/retry", menuHandler.Retry)
	}

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
