package shipping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteItem describes one package volume being quoted or shipped.
// Dimensions are centimeters, weight is kilograms.
type QuoteItem struct {
	ID             string          `json:"id"`
	Quantity       int             `json:"quantity"`
	Weight         decimal.Decimal `json:"weight"`
	Width          decimal.Decimal `json:"width"`
	Height         decimal.Decimal `json:"height"`
	Length         decimal.Decimal `json:"length"`
	InsuranceValue decimal.Decimal `json:"insurance_value"`
}

// QuoteRequest asks the carrier aggregator for shipping options
type QuoteRequest struct {
	FromPostalCode string      `json:"from_postal_code"`
	ToPostalCode   string      `json:"to_postal_code"`
	Items          []QuoteItem `json:"items"`
}

// ShippingOption is one service offered by the aggregator for a quote.
// Company is the underlying delivery company the aggregator brokers.
type ShippingOption struct {
	ServiceID       int64           `json:"service_id"`
	Name            string          `json:"name"`
	Company         string          `json:"company"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	DeliveryDaysMin int             `json:"delivery_days_min"`
	DeliveryDaysMax int             `json:"delivery_days_max"`
}

// Address is a shipping origin or destination
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// CartRequest registers a pending shipment with the aggregator
type CartRequest struct {
	OrderID   uuid.UUID   `json:"order_id"`
	ServiceID int64       `json:"service_id"`
	From      Address     `json:"from"`
	To        Address     `json:"to"`
	Items     []QuoteItem `json:"items"`
}

// CartResult is the aggregator's answer to AddToCart
type CartResult struct {
	CarrierOrderID string `json:"carrier_order_id"`
	Status         string `json:"status"`
}

// LabelResult is the per-order outcome of a label-generation request
type LabelResult struct {
	CarrierOrderID string `json:"carrier_order_id"`
	Generated      bool   `json:"generated"`
	Error          string `json:"error,omitempty"`
}
