// Package handler adapts HTTP requests to the services.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/internal/handoff"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/service"
	"github.com/sirupsen/logrus"
)

const greeting = "Hello, Carrier Sales!"

// maxBodyBytes caps the JSON bodies of the POST routes.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every failed request.
func errorBody(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

func successBody(message string) gin.H {
	return gin.H{"status": "success", "message": message}
}

// decodeObject reads the request body as a JSON object keeping each value raw.
func decodeObject(c *gin.Context) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return payload, nil
}

// bodyErrorStatus is 413 for an oversized body and 400 for anything else decodeObject rejects.
func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func Home(c *gin.Context) {
	c.String(http.StatusOK, greeting)
}

type LoadHandler struct {
	loadService *service.LoadService
}

func NewLoadHandler(service *service.LoadService) *LoadHandler {
	return &LoadHandler{
		loadService: service,
	}
}

// Search filters the catalog by every query parameter. Repeated parameters use the first value.
func (h *LoadHandler) Search(c *gin.Context) {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}
	c.JSON(http.StatusOK, h.loadService.Search(filters))
}

type CallMetricsHandler struct {
	callService *service.CallMetricsService
	logger      logrus.FieldLogger
}

func NewCallMetricsHandler(service *service.CallMetricsService, logger logrus.FieldLogger) *CallMetricsHandler {
	return &CallMetricsHandler{
		callService: service,
		logger:      logger,
	}
}

func (h *CallMetricsHandler) Log(c *gin.Context) {
	payload, err := decodeObject(c)
	if err != nil {
		c.JSON(bodyErrorStatus(err), errorBody("Invalid JSON body: "+err.Error()))
		return
	}

	if _, err := h.callService.Log(c.Request.Context(), payload); err != nil {
		h.logger.WithError(err).Error("Failed to log call metrics")
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successBody("Call metrics logged successfully"))
}

func (h *CallMetricsHandler) List(c *gin.Context) {
	filter := model.CallFilter{
		Outcome:      c.Query("outcome"),
		Sentiment:    c.Query("sentiment"),
		LoadAccepted: c.Query("load_accepted"),
	}

	records, err := h.callService.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read call metrics")
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, records)
}

// Healthz reports whether the call store is reachable.
func (h *CallMetricsHandler) Healthz(c *gin.Context) {
	if err := h.callService.Healthy(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type TransferHandler struct {
	transferService *service.TransferService
	logger          logrus.FieldLogger
}

func NewTransferHandler(service *service.TransferService, logger logrus.FieldLogger) *TransferHandler {
	return &TransferHandler{
		transferService: service,
		logger:          logger,
	}
}

func (h *TransferHandler) Transfer(c *gin.Context) {
	payload, err := decodeObject(c)
	if err != nil {
		c.JSON(bodyErrorStatus(err), errorBody("Invalid JSON body: "+err.Error()))
		return
	}

	transfer, err := h.transferService.Transfer(c.Request.Context(), payload)
	if errors.Is(err, handoff.ErrMissingMessage) {
		c.JSON(http.StatusBadRequest, errorBody("Missing message field"))
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to transfer call to sales")
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successBody("Sales transferred successfully: "+transfer.Message))
}
