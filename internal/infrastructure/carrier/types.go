package carrier

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from the carrier aggregator. The upstream
// status code and raw body are carried verbatim so operators can diagnose
// exactly what the aggregator rejected.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("carrier: HTTP %d: %s", e.StatusCode, e.Body)
}

// quoteRequest is the payload for the shipment calculate endpoint
type quoteRequest struct {
	From     postalCode  `json:"from"`
	To       postalCode  `json:"to"`
	Products []quoteItem `json:"products"`
}

type postalCode struct {
	PostalCode string `json:"postal_code"`
}

type quoteItem struct {
	ID             string `json:"id"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	Length         string `json:"length"`
	Weight         string `json:"weight"`
	InsuranceValue string `json:"insurance_value"`
	Quantity       int    `json:"quantity"`
}

// quoteOption is one service in a quote response. Services the aggregator
// cannot offer for the route come back with Error set instead of a price.
type quoteOption struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Price         string         `json:"price"`
	Currency      string         `json:"currency"`
	Error         string         `json:"error,omitempty"`
	Company       *companyInfo   `json:"company,omitempty"`
	DeliveryRange *deliveryRange `json:"delivery_range,omitempty"`
}

type companyInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deliveryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// cartRequest is the payload for the cart endpoint
type cartRequest struct {
	Service int64        `json:"service"`
	From    cartAddress  `json:"from"`
	To      cartAddress  `json:"to"`
	Volumes []cartVolume `json:"volumes"`
	Options cartOptions  `json:"options"`
}

type cartAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	StateAbbr  string `json:"state_abbr"`
	PostalCode string `json:"postal_code"`
}

type cartVolume struct {
	Width  string `json:"width"`
	Height string `json:"height"`
	Length string `json:"length"`
	Weight string `json:"weight"`
}

type cartOptions struct {
	InsuranceValue string `json:"insurance_value"`
	NonCommercial  bool   `json:"non_commercial"`
}

// cartResponse is the aggregator's answer to a cart insert
type cartResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ordersRequest is the payload for the label-generation and bulk tracking
// endpoints, both keyed by carrier order IDs
type ordersRequest struct {
	Orders []string `json:"orders"`
}

// labelStatus is the per-order entry of a label-generation response
type labelStatus struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// orderRecord is a carrier order as returned by the single-order and bulk
// tracking endpoints. The aggregator has historically nested the same
// tracking information under different keys across endpoint versions, so
// every known placement is modelled here and probed in a fixed priority
// order by ExtractTracking.
type orderRecord struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`

	// Flat variant (bulk tracking endpoint)
	Tracking    string `json:"tracking,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`

	// Nested variant (newer single-order endpoint)
	TrackingInfo *trackingInfo `json:"tracking_info,omitempty"`

	// Carrier name placements
	Courier *courierInfo `json:"courier,omitempty"`
	Service *serviceInfo `json:"service,omitempty"`
}

type trackingInfo struct {
	Code    string `json:"code,omitempty"`
	URL     string `json:"url,omitempty"`
	Carrier string `json:"carrier,omitempty"`
}

type courierInfo struct {
	Name string `json:"name,omitempty"`
}

type serviceInfo struct {
	Name    string       `json:"name,omitempty"`
	Company *companyInfo `json:"company,omitempty"`
}

// decodeOrderRecord parses a raw tracking record, reporting whether the
// shape was recognized at all
func decodeOrderRecord(raw json.RawMessage) (orderRecord, bool) {
	var rec orderRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return orderRecord{}, false
	}
	return rec, rec.ID != ""
}
