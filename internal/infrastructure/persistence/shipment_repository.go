package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shipping"
	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)

// Save creates or updates a shipment
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}

// FindByID finds a shipment by its internal ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByCarrierOrderID finds the shipment owning the given carrier order ID
func (r *GormShipmentRepository) FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("carrier_order_id = ?", carrierOrderID).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByOrder finds all shipments belonging to an order, newest first
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// FindLatestByOrder finds the most recently created shipment for an order
func (r *GormShipmentRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// UpdateTracking applies a coalescing update to the shipment owning the
// given carrier order ID. Only populated fields of the update are written,
// so a partial update never erases tracking data already on the row.
func (r *GormShipmentRepository) UpdateTracking(ctx context.Context, carrierOrderID string, update shipping.TrackingUpdate) (*shipping.Shipment, error) {
	columns := map[string]interface{}{}
	if update.Code != nil {
		columns["tracking_code"] = *update.Code
	}
	if update.URL != nil {
		columns["tracking_url"] = *update.URL
	}
	if update.CarrierName != nil {
		columns["tracking_carrier"] = *update.CarrierName
	}
	if update.Status != nil {
		columns["status"] = *update.Status
	}

	if len(columns) == 0 {
		return r.FindByCarrierOrderID(ctx, carrierOrderID)
	}
	columns["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&shipping.Shipment{}).
		Where("carrier_order_id = ?", carrierOrderID).
		Updates(columns)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}

	return r.FindByCarrierOrderID(ctx, carrierOrderID)
}

// FindStaleOrders returns order IDs owning undelivered shipments that have
// not been touched since olderThan
func (r *GormShipmentRepository) FindStaleOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	var orderIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&shipping.Shipment{}).
		Distinct("order_id").
		Where("status <> ? AND updated_at < ?", shipping.StatusDelivered, olderThan).
		Limit(limit).
		Pluck("order_id", &orderIDs).Error; err != nil {
		return nil, err
	}
	return orderIDs, nil
}
