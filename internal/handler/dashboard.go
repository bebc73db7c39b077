package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/internal/service"
	"github.com/sirupsen/logrus"
)

//go:embed assets/dashboard.html
var assets embed.FS

var dashboardTemplate = template.Must(template.ParseFS(assets, "assets/dashboard.html"))

type DashboardHandler struct {
	dashboardService *service.DashboardService
	apiKey           string
	logger           logrus.FieldLogger
}

// NewDashboardHandler serves the dashboard page and its data. The page embeds apiKey so the
// browser can call the protected data route.
func NewDashboardHandler(service *service.DashboardService, apiKey string, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: service,
		apiKey:           apiKey,
		logger:           logger,
	}
}

func (h *DashboardHandler) Page(c *gin.Context) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, gin.H{"APIKey": h.apiKey}); err != nil {
		h.logger.WithError(err).Error("Failed to render dashboard")
		c.String(http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *DashboardHandler) Data(c *gin.Context) {
	data, err := h.dashboardService.Data(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build dashboard data")
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, data)
}
