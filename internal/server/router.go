package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Joshep-c/approom/internal/purchases"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingPurchaseService = errors.New("purchase service dependency required")

// PurchaseService is the core surface the HTTP adapter drives.
type PurchaseService interface {
	InsertPurchase(ctx context.Context, input purchases.PurchaseInput) (purchases.Purchase, error)
	ListPurchases(ctx context.Context) ([]purchases.Purchase, error)
	Subscribe(ctx context.Context) (*purchases.Subscription, error)
}

type Dependencies struct {
	PurchaseService   PurchaseService
	Logger            *zap.Logger
	HeartbeatInterval time.Duration
	// Shutdown, when closed, ends open purchase streams so the HTTP server can drain.
	Shutdown <-chan struct{}
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.PurchaseService == nil {
		return nil, errMissingPurchaseService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	heartbeatInterval := deps.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		purchases:         deps.PurchaseService,
		logger:            logger,
		heartbeatInterval: heartbeatInterval,
		shutdown:          deps.Shutdown,
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET("/purchases", handler.handleListPurchases)
	router.POST("/purchases", handler.handleCreatePurchase)
	router.GET("/purchases/stream", handler.handlePurchaseStream)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Cache-Control", "Last-Event-ID"},
		MaxAge:       12 * time.Hour,
	})
}

type httpHandler struct {
	purchases         PurchaseService
	logger            *zap.Logger
	heartbeatInterval time.Duration
	shutdown          <-chan struct{}
}

type purchasePayload struct {
	ID         int64   `json:"id"`
	Buyer      string  `json:"buyer"`
	Items      string  `json:"items"`
	TotalPrice float64 `json:"total_price"`
	Date       string  `json:"date"`
}

type createPurchaseRequest struct {
	Buyer      string   `json:"buyer"`
	Items      string   `json:"items"`
	TotalPrice *float64 `json:"total_price"`
	Date       string   `json:"date"`
}

type createPurchaseResponse struct {
	Purchase purchasePayload `json:"purchase"`
}

type listPurchasesResponse struct {
	Purchases []purchasePayload `json:"purchases"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleListPurchases(c *gin.Context) {
	records, err := h.purchases.ListPurchases(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, "failed to list purchases", err)
		return
	}
	c.JSON(http.StatusOK, listPurchasesResponse{Purchases: toPayloads(records)})
}

func (h *httpHandler) handleCreatePurchase(c *gin.Context) {
	var request createPurchaseRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.TotalPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	input, err := purchases.NewPurchaseInput(request.Buyer, request.Items, *request.TotalPrice, request.Date)
	if err != nil {
		h.logger.Debug("purchase rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_purchase"})
		return
	}

	record, err := h.purchases.InsertPurchase(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, "failed to insert purchase", err)
		return
	}

	c.JSON(http.StatusCreated, createPurchaseResponse{Purchase: toPayload(record)})
}

func (h *httpHandler) respondServiceError(c *gin.Context, message string, err error) {
	if errors.Is(err, purchases.ErrValidationFailure) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_purchase"})
		return
	}
	h.logger.Error(message, zap.Error(err))
	code := purchases.ErrorCode(err)
	if code == "" {
		code = "internal_error"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": code})
}

func toPayload(record purchases.Purchase) purchasePayload {
	return purchasePayload{
		ID:         record.ID,
		Buyer:      record.Buyer,
		Items:      record.Items,
		TotalPrice: record.TotalPrice,
		Date:       record.Date,
	}
}

func toPayloads(records []purchases.Purchase) []purchasePayload {
	payloads := make([]purchasePayload, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, toPayload(record))
	}
	return payloads
}
