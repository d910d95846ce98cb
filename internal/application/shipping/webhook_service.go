package shipping

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// eventTTL bounds how long a processed webhook delivery is remembered for
// dedupe. Carrier retries stop well before this.
const eventTTL = 72 * time.Hour

// recognized carrier lifecycle events; anything else is acknowledged and
// ignored so the carrier can grow its vocabulary without breaking us
var recognizedEvents = map[string]bool{
	domain.StatusGenerated: true,
	domain.StatusPosted:    true,
	domain.StatusDelivered: true,
}

// webhookEnvelope is the carrier's push payload. Only the fields we act on
// are declared; data carries optional tracking hints that the canonical
// re-fetch normally supersedes.
type webhookEnvelope struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Data  struct {
		ID          string `json:"id"`
		Tracking    string `json:"tracking"`
		TrackingURL string `json:"tracking_url"`
		Courier     string `json:"courier"`
	} `json:"data"`
}

// WebhookService processes carrier push notifications: it authenticates
// the payload, dedupes redeliveries, re-fetches the canonical order state
// and applies a coalescing update to the owning shipment.
type WebhookService struct {
	secret       string
	shipmentRepo domain.ShipmentRepository
	gateway      domain.CarrierGateway
	idempotency  shared.IdempotencyStore
	logger       *zap.Logger
}

// WebhookServiceConfig contains the dependencies for WebhookService
type WebhookServiceConfig struct {
	WebhookSecret string
	ShipmentRepo  domain.ShipmentRepository
	Gateway       domain.CarrierGateway
	Idempotency   shared.IdempotencyStore
	Logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		secret:       cfg.WebhookSecret,
		shipmentRepo: cfg.ShipmentRepo,
		gateway:      cfg.Gateway,
		idempotency:  cfg.Idempotency,
		logger:       cfg.Logger,
	}
}

// ProcessWebhook authenticates and applies one carrier webhook delivery.
// The signature is verified against the raw payload before any parsing;
// every authentication failure surfaces as shared.ErrInvalidSignature so
// callers cannot distinguish a missing header from a tampered body.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if err := s.verifySignature(payload, signature); err != nil {
		return nil, err
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, shared.NewDomainError("INVALID_PAYLOAD", "Webhook payload is not valid JSON")
	}

	if !recognizedEvents[envelope.Event] {
		s.logger.Debug("ignoring unrecognized webhook event",
			zap.String("event", envelope.Event))
		return &WebhookResult{
			Event:   envelope.Event,
			Ignored: true,
			Message: "event not handled",
		}, nil
	}

	carrierOrderID := envelope.Data.ID
	if carrierOrderID == "" {
		return nil, shared.NewDomainError("INVALID_PAYLOAD", "Webhook payload has no carrier order ID")
	}

	eventID := s.eventID(envelope, payload)
	processed, err := s.idempotency.IsProcessed(ctx, eventID)
	if err != nil {
		// Dedupe is best effort; the update itself coalesces, so applying
		// a duplicate is safe.
		s.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.Error(err))
	} else if processed {
		s.logger.Info("skipping already processed webhook delivery",
			zap.String("event_id", eventID),
			zap.String("event", envelope.Event))
		return &WebhookResult{
			Event:   envelope.Event,
			Ignored: true,
			Message: "delivery already processed",
		}, nil
	}

	update, err := s.buildUpdate(ctx, envelope, carrierOrderID)
	if err != nil {
		return nil, err
	}

	shipment, err := s.shipmentRepo.UpdateTracking(ctx, carrierOrderID, update)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("webhook for unknown carrier order",
				zap.String("carrier_order_id", carrierOrderID),
				zap.String("event", envelope.Event))
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update shipment tracking: %w", err)
	}

	if _, err := s.idempotency.MarkProcessed(ctx, eventID, eventTTL); err != nil {
		s.logger.Warn("failed to mark webhook delivery as processed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	s.logger.Info("webhook processed",
		zap.String("event", envelope.Event),
		zap.String("carrier_order_id", carrierOrderID),
		zap.String("shipment_id", shipment.ID.String()))

	return &WebhookResult{
		Event:      envelope.Event,
		ShipmentID: shipment.ID,
	}, nil
}

// verifySignature checks the hex HMAC-SHA256 of the raw payload in
// constant time.
func (s *WebhookService) verifySignature(payload []byte, signature string) error {
	if s.secret == "" {
		return shared.NewDomainError("WEBHOOK_NOT_CONFIGURED", "Webhook secret is not configured")
	}
	if signature == "" {
		return shared.ErrInvalidSignature
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return shared.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return shared.ErrInvalidSignature
	}
	return nil
}

// buildUpdate assembles the tracking update for a delivery: payload hints
// first, overlaid by the canonical order state re-fetched from the carrier
// so a stale or sparse payload cannot win over fresher data. The event
// name itself becomes the shipment status. A failed re-fetch aborts the
// delivery with no mutation; the carrier redelivers the webhook later.
func (s *WebhookService) buildUpdate(ctx context.Context, envelope webhookEnvelope, carrierOrderID string) (domain.TrackingUpdate, error) {
	update := domain.TrackingUpdate{
		Code:        domain.StringPtr(envelope.Data.Tracking),
		URL:         domain.StringPtr(envelope.Data.TrackingURL),
		CarrierName: domain.StringPtr(envelope.Data.Courier),
	}

	record, err := s.gateway.GetOrder(ctx, carrierOrderID)
	if err != nil {
		s.logger.Warn("canonical re-fetch failed",
			zap.String("carrier_order_id", carrierOrderID),
			zap.Error(err))
		return domain.TrackingUpdate{}, fmt.Errorf("canonical re-fetch failed: %w", err)
	}
	update = update.Merge(record.Update)

	update.Status = domain.StringPtr(envelope.Event)
	return update, nil
}

// eventID derives the dedupe key for a delivery: the carrier's delivery ID
// when present, otherwise a digest of the raw payload.
func (s *WebhookService) eventID(envelope webhookEnvelope, payload []byte) string {
	if envelope.ID != "" {
		return envelope.ID
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
