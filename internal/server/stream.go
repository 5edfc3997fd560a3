package server

import (
	"io"
	"net/http"
	"time"

	"github.com/Joshep-c/approom/internal/purchases"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StreamEventSnapshot      = "snapshot"
	streamEventHeartbeat     = "heartbeat"
	streamSource             = "approom-backend"
	defaultHeartbeatInterval = 25 * time.Second
)

type snapshotEventPayload struct {
	Version   uint64            `json:"version"`
	Purchases []purchasePayload `json:"purchases"`
}

type heartbeatEventPayload struct {
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
}

func (h *httpHandler) handlePurchaseStream(c *gin.Context) {
	ctx := c.Request.Context()
	subscription, err := h.purchases.Subscribe(ctx)
	if err != nil {
		h.respondServiceError(c, "failed to open purchase stream", err)
		return
	}
	defer subscription.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	h.logger.Debug("purchase stream opened", zap.String("remote_addr", c.ClientIP()))
	c.Stream(func(_ io.Writer) bool {
		select {
		case snapshot, ok := <-subscription.C():
			if !ok {
				return false
			}
			c.SSEvent(StreamEventSnapshot, toSnapshotEvent(snapshot))
			return true
		case <-heartbeat.C:
			c.SSEvent(streamEventHeartbeat, heartbeatEventPayload{
				Source:    streamSource,
				Timestamp: time.Now().UTC().Unix(),
			})
			return true
		case <-ctx.Done():
			return false
		case <-h.shutdown:
			return false
		}
	})
	h.logger.Debug("purchase stream closed", zap.String("remote_addr", c.ClientIP()))
}

func toSnapshotEvent(snapshot purchases.Snapshot) snapshotEventPayload {
	return snapshotEventPayload{
		Version:   snapshot.Version,
		Purchases: toPayloads(snapshot.Purchases),
	}
}
