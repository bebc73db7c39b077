package router

import (
	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/internal/handler"
)

func registerLoadRoutes(router *gin.RouterGroup, loadHandler *handler.LoadHandler) {
	router.GET("/loads", loadHandler.Search)
}

func registerCallMetricsRoutes(router *gin.RouterGroup, callHandler *handler.CallMetricsHandler) {
	calls := router.Group("/call-metrics")
	{
		calls.GET("", callHandler.List)
		calls.POST("", callHandler.Log)
	}
}

func registerTransferRoutes(router *gin.RouterGroup, transferHandler *handler.TransferHandler) {
	router.POST("/transfer-sales", transferHandler.Transfer)
}

func registerDashboardRoutes(router *gin.RouterGroup, dashboardHandler *handler.DashboardHandler) {
	router.GET("/dashboard/data", dashboardHandler.Data)
}
