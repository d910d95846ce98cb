package shipping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentUpdates bounds the per-order fan-out of row updates
// during reconciliation.
const DefaultMaxConcurrentUpdates = 8

// ReconcileService pulls tracking state from the carrier for every
// shipment of an order and repairs whatever the webhook path missed. The
// carrier is queried once per order, in a single batched call.
type ReconcileService struct {
	shipmentRepo  domain.ShipmentRepository
	gateway       domain.CarrierGateway
	maxConcurrent int
	logger        *zap.Logger
}

// NewReconcileService creates a new ReconcileService. maxConcurrent bounds
// how many shipment rows are updated in parallel; zero or negative selects
// the default.
func NewReconcileService(shipmentRepo domain.ShipmentRepository, gateway domain.CarrierGateway, maxConcurrent int, logger *zap.Logger) *ReconcileService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUpdates
	}
	return &ReconcileService{
		shipmentRepo:  shipmentRepo,
		gateway:       gateway,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// ReconcileOrder synchronizes all shipments of one order with the
// carrier's view. The carrier fetch is atomic: if it fails, no shipment is
// touched. Row updates are isolated: one failing row never blocks the
// others.
func (s *ReconcileService) ReconcileOrder(ctx context.Context, orderID uuid.UUID) (*ReconcileResult, error) {
	shipments, err := s.shipmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipments: %w", err)
	}

	result := &ReconcileResult{
		OrderID:   orderID,
		Shipments: len(shipments),
	}
	if len(shipments) == 0 {
		return result, nil
	}

	carrierOrderIDs := make([]string, 0, len(shipments))
	seen := make(map[string]bool, len(shipments))
	for _, shipment := range shipments {
		if !seen[shipment.CarrierOrderID] {
			seen[shipment.CarrierOrderID] = true
			carrierOrderIDs = append(carrierOrderIDs, shipment.CarrierOrderID)
		}
	}

	records, err := s.gateway.FetchTrackingBatch(ctx, carrierOrderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracking from carrier: %w", err)
	}
	result.ProcessedCarrierIDs = carrierOrderIDs

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, record := range records {
		if !record.Update.HasTracking() {
			// Freshly generated labels have no tracking yet; nothing to
			// write and nothing wrong.
			s.logger.Debug("no tracking assigned yet",
				zap.String("carrier_order_id", record.CarrierOrderID))
			continue
		}

		record := record
		g.Go(func() error {
			_, err := s.shipmentRepo.UpdateTracking(gctx, record.CarrierOrderID, record.Update)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.logger.Error("failed to apply tracking update",
					zap.String("order_id", orderID.String()),
					zap.String("carrier_order_id", record.CarrierOrderID),
					zap.Error(err))
				return nil
			}
			result.Updated++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("order reconciled",
		zap.String("order_id", orderID.String()),
		zap.Int("shipments", result.Shipments),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))

	return result, nil
}

// ReconcileStale finds orders whose undelivered shipments have gone quiet
// and reconciles each of them. Used by the periodic scheduler.
func (s *ReconcileService) ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	orderIDs, err := s.shipmentRepo.FindStaleOrders(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale orders: %w", err)
	}

	reconciled := 0
	for _, orderID := range orderIDs {
		if ctx.Err() != nil {
			return reconciled, ctx.Err()
		}
		if _, err := s.ReconcileOrder(ctx, orderID); err != nil {
			s.logger.Error("failed to reconcile stale order",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
			continue
		}
		reconciled++
	}
	return reconciled, nil
}
