package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// Save creates or updates a shipment
	Save(ctx context.Context, shipment *Shipment) error

	// FindByID finds a shipment by its internal ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByCarrierOrderID finds the shipment owning the given carrier order ID
	FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*Shipment, error)

	// FindByOrder finds all shipments belonging to an order, newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Shipment, error)

	// FindLatestByOrder finds the most recently created shipment for an order
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*Shipment, error)

	// UpdateTracking applies a coalescing update to the shipment owning the
	// given carrier order ID: only non-nil fields of the update are written,
	// and updated_at is advanced. Returns the post-update row, or
	// shared.ErrNotFound when no shipment owns the carrier order ID.
	UpdateTracking(ctx context.Context, carrierOrderID string, update TrackingUpdate) (*Shipment, error)

	// FindStaleOrders returns order IDs owning undelivered shipments that
	// have not been touched since olderThan, for periodic reconciliation
	FindStaleOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error)
}
