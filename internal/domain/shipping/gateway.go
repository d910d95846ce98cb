package shipping

import "context"

// TrackingRecord is one carrier-side order as reported by the aggregator,
// normalized by the carrier adapter. Update carries whatever tracking
// fields the carrier exposed; an empty Update is the expected "no tracking
// yet" state for freshly generated labels.
type TrackingRecord struct {
	CarrierOrderID string
	Update         TrackingUpdate
}

// CarrierGateway is the port to the shipping-carrier aggregator. The
// aggregator brokers multiple delivery companies behind quote, cart,
// label-generation and tracking endpoints. Implementations hold no mutable
// session state; a non-2xx upstream response surfaces as *carrier.APIError
// with the aggregator's status code and raw body attached.
type CarrierGateway interface {
	// Quote returns the shipping options available for a set of items
	// between two postal codes
	Quote(ctx context.Context, req QuoteRequest) ([]ShippingOption, error)

	// AddToCart registers a pending shipment with the aggregator and
	// returns the carrier-assigned order ID
	AddToCart(ctx context.Context, req CartRequest) (*CartResult, error)

	// GenerateLabels requests label generation for the given carrier order
	// IDs; the result carries a per-order outcome, success or error
	GenerateLabels(ctx context.Context, carrierOrderIDs []string) ([]LabelResult, error)

	// GetOrder fetches the canonical state of a single carrier order
	GetOrder(ctx context.Context, carrierOrderID string) (*TrackingRecord, error)

	// FetchTrackingBatch fetches tracking state for many carrier orders in
	// a single call
	FetchTrackingBatch(ctx context.Context, carrierOrderIDs []string) ([]TrackingRecord, error)
}
