package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshipping "github.com/shopfront/backend/internal/application/shipping"
	"github.com/shopfront/backend/internal/domain/shared"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// ShipmentHandler exposes operator endpoints for quoting, creating and
// inspecting shipments
type ShipmentHandler struct {
	BaseHandler
	labelService     *appshipping.LabelService
	trackingService  *appshipping.TrackingService
	reconcileService *appshipping.ReconcileService
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(
	labelService *appshipping.LabelService,
	trackingService *appshipping.TrackingService,
	reconcileService *appshipping.ReconcileService,
	log *zap.Logger,
) *ShipmentHandler {
	return &ShipmentHandler{
		BaseHandler:      NewBaseHandler(log),
		labelService:     labelService,
		trackingService:  trackingService,
		reconcileService: reconcileService,
	}
}

type quoteItemRequest struct {
	ID             string          `json:"id"`
	Quantity       int             `json:"quantity" binding:"required,min=1"`
	Weight         decimal.Decimal `json:"weight" binding:"required"`
	Width          decimal.Decimal `json:"width" binding:"required"`
	Height         decimal.Decimal `json:"height" binding:"required"`
	Length         decimal.Decimal `json:"length" binding:"required"`
	InsuranceValue decimal.Decimal `json:"insurance_value"`
}

type quoteRequest struct {
	FromPostalCode string             `json:"from_postal_code" binding:"required,postalcode"`
	ToPostalCode   string             `json:"to_postal_code" binding:"required,postalcode"`
	Items          []quoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r quoteRequest) toDomain() domain.QuoteRequest {
	return domain.QuoteRequest{
		FromPostalCode: r.FromPostalCode,
		ToPostalCode:   r.ToPostalCode,
		Items:          toDomainItems(r.Items),
	}
}

func toDomainItems(items []quoteItemRequest) []domain.QuoteItem {
	out := make([]domain.QuoteItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.QuoteItem{
			ID:             item.ID,
			Quantity:       item.Quantity,
			Weight:         item.Weight,
			Width:          item.Width,
			Height:         item.Height,
			Length:         item.Length,
			InsuranceValue: item.InsuranceValue,
		})
	}
	return out
}

// Quote handles POST /api/v1/shipments/quote
func (h *ShipmentHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	options, err := h.labelService.Quote(c.Request.Context(), req.toDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, options)
}

type addressRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required,postalcode"`
}

func (r addressRequest) toDomain() domain.Address {
	return domain.Address{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
	}
}

type createShipmentRequest struct {
	OrderID   uuid.UUID          `json:"order_id" binding:"required"`
	ServiceID int64              `json:"service_id" binding:"required"`
	From      addressRequest     `json:"from" binding:"required"`
	To        addressRequest     `json:"to" binding:"required"`
	Items     []quoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Create handles POST /api/v1/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	shipment, err := h.labelService.CreateShipment(c.Request.Context(), domain.CartRequest{
		OrderID:   req.OrderID,
		ServiceID: req.ServiceID,
		From:      req.From.toDomain(),
		To:        req.To.toDomain(),
		Items:     toDomainItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, shipment)
}

// Tracking handles GET /api/v1/shipments/tracking?orderId=...
func (h *ShipmentHandler) Tracking(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("orderId"))
	if err != nil {
		h.BadRequest(c, "orderId must be a valid UUID")
		return
	}

	view, err := h.trackingService.LatestForOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "no shipment found for this order")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

type reconcileRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// Reconcile handles POST /api/v1/shipments/reconcile
func (h *ShipmentHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.reconcileService.ReconcileOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		if isCarrierError(err) {
			h.Error(c, http.StatusBadGateway, dto.ErrCodeCarrierUnavailable, "carrier API unavailable")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
