package shipping

import (
	"context"
	"fmt"

	"github.com/shopfront/backend/internal/domain/shared"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// LabelService drives the carrier-side shipment lifecycle: quoting,
// registering a cart entry and generating the label that yields the
// carrier order ID every later tracking update is keyed by.
type LabelService struct {
	shipmentRepo domain.ShipmentRepository
	gateway      domain.CarrierGateway
	logger       *zap.Logger
}

// NewLabelService creates a new LabelService
func NewLabelService(shipmentRepo domain.ShipmentRepository, gateway domain.CarrierGateway, logger *zap.Logger) *LabelService {
	return &LabelService{
		shipmentRepo: shipmentRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// Quote returns the shipping options the aggregator offers for a request
func (s *LabelService) Quote(ctx context.Context, req domain.QuoteRequest) ([]domain.ShippingOption, error) {
	if req.FromPostalCode == "" || req.ToPostalCode == "" {
		return nil, shared.NewDomainError("INVALID_QUOTE", "Origin and destination postal codes are required")
	}
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_QUOTE", "At least one item is required")
	}

	options, err := s.gateway.Quote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to quote shipment: %w", err)
	}
	return options, nil
}

// CreateShipment registers an order with the carrier, generates its label
// and persists the resulting shipment. The shipment starts without
// tracking; the webhook and reconciliation paths fill it in later.
func (s *LabelService) CreateShipment(ctx context.Context, req domain.CartRequest) (*domain.Shipment, error) {
	cart, err := s.gateway.AddToCart(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register shipment with carrier: %w", err)
	}

	results, err := s.gateway.GenerateLabels(ctx, []string{cart.CarrierOrderID})
	if err != nil {
		return nil, fmt.Errorf("failed to generate label: %w", err)
	}
	for _, r := range results {
		if r.CarrierOrderID == cart.CarrierOrderID && !r.Generated {
			return nil, shared.NewDomainError("LABEL_GENERATION_FAILED", r.Error)
		}
	}

	shipment, err := domain.NewShipment(req.OrderID, cart.CarrierOrderID)
	if err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Save(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	s.logger.Info("shipment created",
		zap.String("order_id", req.OrderID.String()),
		zap.String("carrier_order_id", cart.CarrierOrderID),
		zap.String("shipment_id", shipment.ID.String()))

	return shipment, nil
}
