package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, metros *MetroHandler) {
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/stats", handler.GetStats)
		api.GET("/listings/recent", handler.GetRecentListings)
		api.POST("/scan", handler.RunScan)
		api.GET("/telegram/config", handler.GetTelegramConfig)
		api.POST("/telegram/test", handler.TestTelegramConfig)

		api.GET("/metros", metros.ListMetros)
		api.GET("/metros/:slug", metros.GetMetro)
		api.GET("/search-profile", metros.GetSearchProfile)
	}
}
