package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/domain/shipping"
)

const (
	// maxResponseSize limits carrier response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	defaultTimeoutSeconds = 15
)

// Carrier aggregator endpoints
const (
	pathQuote    = "/api/v2/me/shipment/calculate"
	pathCart     = "/api/v2/me/cart"
	pathLabels   = "/api/v2/me/shipment/generate"
	pathOrder    = "/api/v2/me/orders/"
	pathTracking = "/api/v2/me/shipment/tracking"
)

// Client implements shipping.CarrierGateway against the carrier
// aggregator's HTTP API. It holds no mutable session state; credentials
// are resolved once at construction and read-only thereafter.
type Client struct {
	cfg        *ResolvedConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a carrier client from raw configuration, resolving
// sandbox/production precedence and sanitizing credentials up front
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}

	return &Client{
		cfg: resolved,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: logger.Named("carrier"),
	}, nil
}

// Quote returns the shipping options available for the given items and route
func (c *Client) Quote(ctx context.Context, req shipping.QuoteRequest) ([]shipping.ShippingOption, error) {
	payload := quoteRequest{
		From:     postalCode{PostalCode: req.FromPostalCode},
		To:       postalCode{PostalCode: req.ToPostalCode},
		Products: make([]quoteItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		payload.Products = append(payload.Products, toQuoteItem(item))
	}

	body, err := c.do(ctx, http.MethodPost, pathQuote, payload)
	if err != nil {
		return nil, err
	}

	var options []quoteOption
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("carrier: failed to parse quote response: %w", err)
	}

	result := make([]shipping.ShippingOption, 0, len(options))
	for _, opt := range options {
		// Services unavailable for the route come back with an error
		// field instead of a price
		if opt.Error != "" {
			continue
		}
		price, err := decimal.NewFromString(opt.Price)
		if err != nil {
			c.logger.Warn("skipping quote option with unparseable price",
				zap.Int64("service_id", opt.ID),
				zap.String("price", opt.Price))
			continue
		}
		option := shipping.ShippingOption{
			ServiceID: opt.ID,
			Name:      opt.Name,
			Price:     price,
			Currency:  opt.Currency,
		}
		if opt.Company != nil {
			option.Company = opt.Company.Name
		}
		if opt.DeliveryRange != nil {
			option.DeliveryDaysMin = opt.DeliveryRange.Min
			option.DeliveryDaysMax = opt.DeliveryRange.Max
		}
		result = append(result, option)
	}
	return result, nil
}

// AddToCart registers a pending shipment with the aggregator
func (c *Client) AddToCart(ctx context.Context, req shipping.CartRequest) (*shipping.CartResult, error) {
	payload := cartRequest{
		Service: req.ServiceID,
		From:    toCartAddress(req.From),
		To:      toCartAddress(req.To),
		Volumes: make([]cartVolume, 0, len(req.Items)),
	}
	insurance := decimal.Zero
	for _, item := range req.Items {
		payload.Volumes = append(payload.Volumes, cartVolume{
			Width:  item.Width.String(),
			Height: item.Height.String(),
			Length: item.Length.String(),
			Weight: item.Weight.String(),
		})
		insurance = insurance.Add(item.InsuranceValue)
	}
	payload.Options = cartOptions{
		InsuranceValue: insurance.String(),
		NonCommercial:  true,
	}

	body, err := c.do(ctx, http.MethodPost, pathCart, payload)
	if err != nil {
		return nil, err
	}

	var resp cartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("carrier: failed to parse cart response: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("carrier: cart response missing order id")
	}

	return &shipping.CartResult{
		CarrierOrderID: resp.ID,
		Status:         resp.Status,
	}, nil
}

// GenerateLabels requests label generation for the given carrier orders,
// returning a per-order outcome
func (c *Client) GenerateLabels(ctx context.Context, carrierOrderIDs []string) ([]shipping.LabelResult, error) {
	body, err := c.do(ctx, http.MethodPost, pathLabels, ordersRequest{Orders: carrierOrderIDs})
	if err != nil {
		return nil, err
	}

	var statuses map[string]labelStatus
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("carrier: failed to parse label response: %w", err)
	}

	results := make([]shipping.LabelResult, 0, len(carrierOrderIDs))
	for _, id := range carrierOrderIDs {
		status, ok := statuses[id]
		if !ok {
			results = append(results, shipping.LabelResult{
				CarrierOrderID: id,
				Error:          "no result returned for order",
			})
			continue
		}
		result := shipping.LabelResult{CarrierOrderID: id}
		if status.Error != "" {
			result.Error = status.Error
		} else {
			result.Generated = true
		}
		results = append(results, result)
	}
	return results, nil
}

// GetOrder fetches the canonical state of a single carrier order
func (c *Client) GetOrder(ctx context.Context, carrierOrderID string) (*shipping.TrackingRecord, error) {
	body, err := c.do(ctx, http.MethodGet, pathOrder+carrierOrderID, nil)
	if err != nil {
		return nil, err
	}

	record, ok := extractRecord(body, c.logger)
	if !ok {
		return nil, fmt.Errorf("carrier: unrecognized order response for %s", carrierOrderID)
	}
	return record, nil
}

// FetchTrackingBatch fetches tracking state for many carrier orders in a
// single call. Records with unrecognized shapes are logged and dropped;
// the rest are returned normalized.
func (c *Client) FetchTrackingBatch(ctx context.Context, carrierOrderIDs []string) ([]shipping.TrackingRecord, error) {
	body, err := c.do(ctx, http.MethodPost, pathTracking, ordersRequest{Orders: carrierOrderIDs})
	if err != nil {
		return nil, err
	}

	// The bulk endpoint returns an object keyed by carrier order ID
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("carrier: failed to parse tracking response: %w", err)
	}

	records := make([]shipping.TrackingRecord, 0, len(raw))
	for id, payload := range raw {
		record, ok := extractRecord(payload, c.logger)
		if !ok {
			continue
		}
		if record.CarrierOrderID == "" {
			record.CarrierOrderID = id
		}
		records = append(records, *record)
	}
	return records, nil
}

// do performs an HTTP request against the aggregator with the fixed
// header set. Non-2xx responses surface as *APIError carrying the
// upstream status code and raw body verbatim.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("carrier: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("carrier: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("carrier: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("carrier: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func toQuoteItem(item shipping.QuoteItem) quoteItem {
	return quoteItem{
		ID:             item.ID,
		Width:          item.Width.String(),
		Height:         item.Height.String(),
		Length:         item.Length.String(),
		Weight:         item.Weight.String(),
		InsuranceValue: item.InsuranceValue.String(),
		Quantity:       item.Quantity,
	}
}

func toCartAddress(a shipping.Address) cartAddress {
	return cartAddress{
		Name:       a.Name,
		Phone:      a.Phone,
		Email:      a.Email,
		Address:    a.Street,
		City:       a.City,
		StateAbbr:  a.State,
		PostalCode: a.PostalCode,
	}
}

// Ensure Client implements the CarrierGateway interface
var _ shipping.CarrierGateway = (*Client)(nil)
