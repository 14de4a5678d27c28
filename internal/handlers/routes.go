package handlers

import (
	"github.com/alimgiray/contribrank/internal/middleware"
	"github.com/alimgiray/contribrank/internal/services"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the read-only report API
func NewRouter(reports *services.ReportService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	healthHandler := NewHealthHandler()
	reportHandler := NewReportHandler(reports)
	notFoundHandler := NewNotFoundHandler()

	router.GET("/health", healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/periods/:period/contributors", reportHandler.Contributors)
		api.GET("/periods/:period/contributors/:login", reportHandler.Explain)
		api.GET("/periods/:period/runs", reportHandler.Runs)
		api.GET("/contributors/:login/history", reportHandler.History)
	}

	router.NoRoute(notFoundHandler.NotFound)
	return router
}
