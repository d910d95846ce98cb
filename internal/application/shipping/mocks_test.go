package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/mock"
)

// MockShipmentRepository is a mock implementation of shipping.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*domain.Shipment, error) {
	args := m.Called(ctx, carrierOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateTracking(ctx context.Context, carrierOrderID string, update domain.TrackingUpdate) (*domain.Shipment, error) {
	args := m.Called(ctx, carrierOrderID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindStaleOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockCarrierGateway is a mock implementation of shipping.CarrierGateway
type MockCarrierGateway struct {
	mock.Mock
}

func (m *MockCarrierGateway) Quote(ctx context.Context, req domain.QuoteRequest) ([]domain.ShippingOption, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShippingOption), args.Error(1)
}

func (m *MockCarrierGateway) AddToCart(ctx context.Context, req domain.CartRequest) (*domain.CartResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartResult), args.Error(1)
}

func (m *MockCarrierGateway) GenerateLabels(ctx context.Context, carrierOrderIDs []string) ([]domain.LabelResult, error) {
	args := m.Called(ctx, carrierOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabelResult), args.Error(1)
}

func (m *MockCarrierGateway) GetOrder(ctx context.Context, carrierOrderID string) (*domain.TrackingRecord, error) {
	args := m.Called(ctx, carrierOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingRecord), args.Error(1)
}

func (m *MockCarrierGateway) FetchTrackingBatch(ctx context.Context, carrierOrderIDs []string) ([]domain.TrackingRecord, error) {
	args := m.Called(ctx, carrierOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackingRecord), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
