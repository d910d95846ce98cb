package shipping

import (
	"github.com/google/uuid"
)

// WebhookResult contains the result of processing a carrier webhook
type WebhookResult struct {
	Event      string    `json:"event"`
	ShipmentID uuid.UUID `json:"shipment_id,omitempty"`
	Ignored    bool      `json:"ignored"`
	Message    string    `json:"message,omitempty"`
}

// ReconcileResult summarizes one reconciliation pass over an order's
// shipments. ProcessedCarrierIDs lists the deduped carrier orders the
// pass queried, whether or not their rows changed.
type ReconcileResult struct {
	OrderID             uuid.UUID `json:"order_id"`
	Shipments           int       `json:"shipments"`
	Updated             int       `json:"updated"`
	Failed              int       `json:"failed"`
	ProcessedCarrierIDs []string  `json:"processed_carrier_ids"`
}

// TrackingView is the read-model returned to storefront callers asking
// where their order is
type TrackingView struct {
	ShipmentID      uuid.UUID `json:"shipment_id"`
	OrderID         uuid.UUID `json:"order_id"`
	CarrierOrderID  string    `json:"carrier_order_id"`
	Status          string    `json:"status"`
	TrackingCode    *string   `json:"tracking_code"`
	TrackingURL     *string   `json:"tracking_url"`
	TrackingCarrier *string   `json:"tracking_carrier"`
}
