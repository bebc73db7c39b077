package router

import (
	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/internal/handler"
	"github.com/navid-fn/carrier-sales/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Config struct {
	LoadHandler        *handler.LoadHandler
	CallMetricsHandler *handler.CallMetricsHandler
	TransferHandler    *handler.TransferHandler
	DashboardHandler   *handler.DashboardHandler

	APIKey  string
	Limiter *rate.Limiter
	Logger  logrus.FieldLogger
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger), Instrument(), RateLimit(cfg.Limiter))

	router.GET("/healthz", cfg.CallMetricsHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/dashboard", cfg.DashboardHandler.Page)

	api := router.Group("/", APIKey(cfg.APIKey))
	api.GET("/", handler.Home)
	registerLoadRoutes(api, cfg.LoadHandler)
	registerCallMetricsRoutes(api, cfg.CallMetricsHandler)
	registerTransferRoutes(api, cfg.TransferHandler)
	registerDashboardRoutes(api, cfg.DashboardHandler)

	return router
}
