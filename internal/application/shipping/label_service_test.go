package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validQuoteRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		FromPostalCode: "01001000",
		ToPostalCode:   "20040020",
		Items: []domain.QuoteItem{{
			ID:       "sku-1",
			Quantity: 1,
			Weight:   decimal.NewFromFloat(0.5),
			Width:    decimal.NewFromInt(15),
			Height:   decimal.NewFromInt(10),
			Length:   decimal.NewFromInt(20),
		}},
	}
}

func TestLabelService_Quote(t *testing.T) {
	ctx := context.Background()

	t.Run("returns carrier options", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		gateway := &MockCarrierGateway{}
		service := NewLabelService(repo, gateway, zap.NewNop())

		options := []domain.ShippingOption{{ServiceID: 1, Name: "PAC", Company: "Correios"}}
		gateway.On("Quote", mock.Anything, mock.Anything).Return(options, nil)

		result, err := service.Quote(ctx, validQuoteRequest())
		require.NoError(t, err)
		assert.Equal(t, options, result)
	})

	t.Run("rejects request without postal codes", func(t *testing.T) {
		service := NewLabelService(&MockShipmentRepository{}, &MockCarrierGateway{}, zap.NewNop())

		req := validQuoteRequest()
		req.ToPostalCode = ""

		_, err := service.Quote(ctx, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUOTE", domainErr.Code)
	})

	t.Run("rejects request without items", func(t *testing.T) {
		service := NewLabelService(&MockShipmentRepository{}, &MockCarrierGateway{}, zap.NewNop())

		req := validQuoteRequest()
		req.Items = nil

		_, err := service.Quote(ctx, req)
		require.Error(t, err)
	})
}

func TestLabelService_CreateShipment(t *testing.T) {
	ctx := context.Background()

	cartRequest := func(orderID uuid.UUID) domain.CartRequest {
		return domain.CartRequest{
			OrderID:   orderID,
			ServiceID: 1,
			From:      domain.Address{PostalCode: "01001000"},
			To:        domain.Address{PostalCode: "20040020"},
			Items:     validQuoteRequest().Items,
		}
	}

	t.Run("registers cart, generates label and persists shipment", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		gateway := &MockCarrierGateway{}
		service := NewLabelService(repo, gateway, zap.NewNop())

		orderID := uuid.New()
		gateway.On("AddToCart", mock.Anything, mock.Anything).
			Return(&domain.CartResult{CarrierOrderID: "ME-500", Status: "pending"}, nil)
		gateway.On("GenerateLabels", mock.Anything, []string{"ME-500"}).
			Return([]domain.LabelResult{{CarrierOrderID: "ME-500", Generated: true}}, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Shipment) bool {
			return s.OrderID == orderID && s.CarrierOrderID == "ME-500" &&
				s.Status == domain.StatusGenerated && !s.HasTracking()
		})).Return(nil)

		shipment, err := service.CreateShipment(ctx, cartRequest(orderID))
		require.NoError(t, err)
		assert.Equal(t, "ME-500", shipment.CarrierOrderID)
		repo.AssertExpectations(t)
	})

	t.Run("surfaces per-order label failure", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		gateway := &MockCarrierGateway{}
		service := NewLabelService(repo, gateway, zap.NewNop())

		gateway.On("AddToCart", mock.Anything, mock.Anything).
			Return(&domain.CartResult{CarrierOrderID: "ME-501"}, nil)
		gateway.On("GenerateLabels", mock.Anything, []string{"ME-501"}).
			Return([]domain.LabelResult{{CarrierOrderID: "ME-501", Generated: false, Error: "insufficient balance"}}, nil)

		_, err := service.CreateShipment(ctx, cartRequest(uuid.New()))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "LABEL_GENERATION_FAILED", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("does not persist when cart registration fails", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		gateway := &MockCarrierGateway{}
		service := NewLabelService(repo, gateway, zap.NewNop())

		gateway.On("AddToCart", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		_, err := service.CreateShipment(ctx, cartRequest(uuid.New()))
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestTrackingService_LatestForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the newest shipment view", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		service := NewTrackingService(repo)

		orderID := uuid.New()
		shipment, _ := domain.NewShipment(orderID, "ME-900")
		shipment.TrackingCode = domain.StringPtr("AA900")
		shipment.TrackingCarrier = domain.StringPtr("Correios")
		shipment.Status = domain.StatusPosted
		repo.On("FindLatestByOrder", mock.Anything, orderID).Return(shipment, nil)

		view, err := service.LatestForOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, "ME-900", view.CarrierOrderID)
		assert.Equal(t, domain.StatusPosted, view.Status)
		require.NotNil(t, view.TrackingCode)
		assert.Equal(t, "AA900", *view.TrackingCode)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := &MockShipmentRepository{}
		service := NewTrackingService(repo)

		orderID := uuid.New()
		repo.On("FindLatestByOrder", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		_, err := service.LatestForOrder(ctx, orderID)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}
