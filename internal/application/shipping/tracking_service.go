package shipping

import (
	"context"

	"github.com/google/uuid"
	domain "github.com/shopfront/backend/internal/domain/shipping"
)

// TrackingService answers "where is my order" queries from the storefront
type TrackingService struct {
	shipmentRepo domain.ShipmentRepository
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(shipmentRepo domain.ShipmentRepository) *TrackingService {
	return &TrackingService{shipmentRepo: shipmentRepo}
}

// LatestForOrder returns the tracking view of the order's most recent
// shipment. When an order was re-shipped, the newest shipment is the one
// the customer cares about.
func (s *TrackingService) LatestForOrder(ctx context.Context, orderID uuid.UUID) (*TrackingView, error) {
	shipment, err := s.shipmentRepo.FindLatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &TrackingView{
		ShipmentID:      shipment.ID,
		OrderID:         shipment.OrderID,
		CarrierOrderID:  shipment.CarrierOrderID,
		Status:          shipment.Status,
		TrackingCode:    shipment.TrackingCode,
		TrackingURL:     shipment.TrackingURL,
		TrackingCarrier: shipment.TrackingCarrier,
	}, nil
}
