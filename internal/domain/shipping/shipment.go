package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/backend/internal/domain/shared"
)

// Well-known carrier lifecycle event names. The carrier's vocabulary grows
// over time; Status stores whatever event name was last reported and no
// transition validation is enforced (the carrier is the authority).
const (
	StatusGenerated = "order.generated"
	StatusPosted    = "order.posted"
	StatusDelivered = "order.delivered"
)

// Shipment tracks one carrier-side label/order and its delivery-tracking
// state. An order may accumulate multiple shipments over its lifetime
// (re-shipment after a lost or returned package); the carrier order ID is
// the join key used by both the webhook and reconciliation paths.
type Shipment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	CarrierOrderID  string    `gorm:"uniqueIndex;not null" json:"carrier_order_id"`
	TrackingCode    *string   `gorm:"column:tracking_code" json:"tracking_code"`
	TrackingURL     *string   `gorm:"column:tracking_url" json:"tracking_url"`
	TrackingCarrier *string   `gorm:"column:tracking_carrier" json:"tracking_carrier"`
	Status          string    `gorm:"not null" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a new shipment for an order, bound to the identifier
// the carrier aggregator assigned when the label was created.
func NewShipment(orderID uuid.UUID, carrierOrderID string) (*Shipment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if carrierOrderID == "" {
		return nil, shared.NewDomainError("INVALID_CARRIER_ORDER", "Carrier order ID cannot be empty")
	}

	now := time.Now()
	return &Shipment{
		ID:             uuid.New(),
		OrderID:        orderID,
		CarrierOrderID: carrierOrderID,
		Status:         StatusGenerated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyTracking merges a tracking update into the shipment. The merge
// coalesces: a nil field in the update never erases a previously known
// value, so a partial or stale update cannot corrupt state. Returns true
// if any field changed.
func (s *Shipment) ApplyTracking(u TrackingUpdate) bool {
	changed := false
	if u.Code != nil && (s.TrackingCode == nil || *s.TrackingCode != *u.Code) {
		s.TrackingCode = u.Code
		changed = true
	}
	if u.URL != nil && (s.TrackingURL == nil || *s.TrackingURL != *u.URL) {
		s.TrackingURL = u.URL
		changed = true
	}
	if u.CarrierName != nil && (s.TrackingCarrier == nil || *s.TrackingCarrier != *u.CarrierName) {
		s.TrackingCarrier = u.CarrierName
		changed = true
	}
	if u.Status != nil && s.Status != *u.Status {
		s.Status = *u.Status
		changed = true
	}
	if changed {
		s.UpdatedAt = time.Now()
	}
	return changed
}

// HasTracking reports whether the carrier has assigned a tracking code yet
func (s *Shipment) HasTracking() bool {
	return s.TrackingCode != nil && *s.TrackingCode != ""
}

// IsDelivered reports whether the last known carrier event is a delivery
func (s *Shipment) IsDelivered() bool {
	return s.Status == StatusDelivered
}
