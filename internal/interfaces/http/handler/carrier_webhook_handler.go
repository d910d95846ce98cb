package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appshipping "github.com/shopfront/backend/internal/application/shipping"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/carrier"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// signatureHeader carries the hex HMAC-SHA256 of the raw request body
const signatureHeader = "X-Carrier-Signature"

// maxWebhookPayloadSize caps webhook bodies at 64KB. Carrier events are
// small JSON envelopes; anything larger is rejected unread.
const maxWebhookPayloadSize = 64 * 1024

// CarrierWebhookHandler receives shipment status notifications from the
// carrier aggregator
type CarrierWebhookHandler struct {
	BaseHandler
	service *appshipping.WebhookService
}

// NewCarrierWebhookHandler creates a new carrier webhook handler
func NewCarrierWebhookHandler(service *appshipping.WebhookService, log *zap.Logger) *CarrierWebhookHandler {
	return &CarrierWebhookHandler{
		BaseHandler: NewBaseHandler(log),
		service:     service,
	}
}

// Handle processes POST /webhooks/carrier
func (h *CarrierWebhookHandler) Handle(c *gin.Context) {
	log := logger.GetGinLogger(c, h.logger)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		h.BadRequest(c, "failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "payload too large")
		return
	}

	// A missing header goes through the same verification path as a bad
	// one; the response must not reveal which check failed.
	signature := c.GetHeader(signatureHeader)

	result, err := h.service.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidSignature):
			log.Warn("webhook signature verification failed")
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "invalid signature")
		case errors.Is(err, shared.ErrNotFound):
			h.NotFound(c, "no shipment matches this carrier order")
		case isCarrierError(err):
			h.Error(c, http.StatusBadGateway, dto.ErrCodeCarrierUnavailable, "carrier API unavailable")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Success(c, result)
}

func isCarrierError(err error) bool {
	var apiErr *carrier.APIError
	return errors.As(err, &apiErr)
}
