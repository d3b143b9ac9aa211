package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/security"
	"github.com/HSouheill/salon_backend/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// WebhookProcessor handles one raw provider delivery
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, d services.WebhookDelivery) models.WebhookAck
}

// WebhookController receives terminal provider notifications
type WebhookController struct {
	processor WebhookProcessor
	timeout   time.Duration
}

// NewWebhookController creates a new webhook controller
func NewWebhookController(processor WebhookProcessor) *WebhookController {
	return &WebhookController{
		processor: processor,
		timeout:   30 * time.Second,
	}
}

// HandleHelcimWebhook always answers 200 so the provider does not redeliver;
// the ack body and the logs carry the outcome.
func (wc *WebhookController) HandleHelcimWebhook(c echo.Context) error {
	// Settlement must not be cut short when the provider hangs up.
	ctx, cancel := context.WithTimeout(context.Background(), wc.timeout)
	defer cancel()

	req := c.Request()
	body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		log.Printf("webhook ignored reason=unreadable_body err=%v", err)
		return c.JSON(http.StatusOK, models.WebhookAck{Received: true, Note: "unreadable body"})
	}

	deliveryID := req.Header.Get(security.HeaderWebhookID)
	delivery := services.WebhookDelivery{
		DeliveryID: deliveryID,
		Timestamp:  req.Header.Get(security.HeaderWebhookTimestamp),
		Signature:  req.Header.Get(security.HeaderWebhookSignature),
		Body:       body,
	}
	logID := deliveryID
	if logID == "" {
		logID = "local-" + uuid.NewString()
	}

	log.Printf("💳 webhook received deliveryId=%s bytes=%d headers=%v", logID, len(body), security.SanitizeHeaders(req.Header))

	ack := wc.processor.HandleWebhook(ctx, delivery)
	return c.JSON(http.StatusOK, ack)
}

// ValidateHelcimWebhook answers the provider's URL validation probe
func (wc *WebhookController) ValidateHelcimWebhook(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"endpoint":  "helcim webhook",
		"methods":   []string{http.MethodGet, http.MethodPost},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
