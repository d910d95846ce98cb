package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	appshipping "github.com/shopfront/backend/internal/application/shipping"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubShipmentRepo records FindStaleOrders calls; everything else is unused
// by the scheduler path.
type stubShipmentRepo struct {
	staleCalls atomic.Int64
}

func (s *stubShipmentRepo) Save(ctx context.Context, shipment *domain.Shipment) error { return nil }
func (s *stubShipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	return nil, nil
}
func (s *stubShipmentRepo) FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*domain.Shipment, error) {
	return nil, nil
}
func (s *stubShipmentRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Shipment, error) {
	return nil, nil
}
func (s *stubShipmentRepo) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	return nil, nil
}
func (s *stubShipmentRepo) UpdateTracking(ctx context.Context, carrierOrderID string, update domain.TrackingUpdate) (*domain.Shipment, error) {
	return nil, nil
}
func (s *stubShipmentRepo) FindStaleOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	s.staleCalls.Add(1)
	return nil, nil
}

type stubGateway struct{}

func (stubGateway) Quote(ctx context.Context, req domain.QuoteRequest) ([]domain.ShippingOption, error) {
	return nil, nil
}
func (stubGateway) AddToCart(ctx context.Context, req domain.CartRequest) (*domain.CartResult, error) {
	return nil, nil
}
func (stubGateway) GenerateLabels(ctx context.Context, carrierOrderIDs []string) ([]domain.LabelResult, error) {
	return nil, nil
}
func (stubGateway) GetOrder(ctx context.Context, carrierOrderID string) (*domain.TrackingRecord, error) {
	return nil, nil
}
func (stubGateway) FetchTrackingBatch(ctx context.Context, carrierOrderIDs []string) ([]domain.TrackingRecord, error) {
	return nil, nil
}

func newTestScheduler(t *testing.T, repo *stubShipmentRepo, cfg ReconcileSchedulerConfig) *ReconcileScheduler {
	t.Helper()
	service := appshipping.NewReconcileService(repo, stubGateway{}, 0, zap.NewNop())
	scheduler, err := NewReconcileScheduler(service, cfg, zap.NewNop())
	require.NoError(t, err)
	return scheduler
}

func TestReconcileSchedulerConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := DefaultReconcileSchedulerConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects non-positive values", func(t *testing.T) {
		for _, mutate := range []func(*ReconcileSchedulerConfig){
			func(c *ReconcileSchedulerConfig) { c.Interval = 0 },
			func(c *ReconcileSchedulerConfig) { c.StaleAfter = 0 },
			func(c *ReconcileSchedulerConfig) { c.BatchLimit = 0 },
			func(c *ReconcileSchedulerConfig) { c.RunTimeout = 0 },
		} {
			cfg := DefaultReconcileSchedulerConfig()
			mutate(&cfg)
			assert.Equal(t, ErrInvalidConfig, cfg.Validate())
		}
	})
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	t.Run("runs sweeps until stopped", func(t *testing.T) {
		repo := &stubShipmentRepo{}
		cfg := DefaultReconcileSchedulerConfig()
		cfg.Interval = 10 * time.Millisecond
		scheduler := newTestScheduler(t, repo, cfg)

		require.NoError(t, scheduler.Start(context.Background()))

		assert.Eventually(t, func() bool {
			return repo.staleCalls.Load() >= 2
		}, time.Second, 5*time.Millisecond)

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, scheduler.Stop(stopCtx))
	})

	t.Run("disabled scheduler never sweeps", func(t *testing.T) {
		repo := &stubShipmentRepo{}
		cfg := DefaultReconcileSchedulerConfig()
		cfg.Enabled = false
		cfg.Interval = 5 * time.Millisecond
		scheduler := newTestScheduler(t, repo, cfg)

		require.NoError(t, scheduler.Start(context.Background()))
		time.Sleep(30 * time.Millisecond)
		assert.Zero(t, repo.staleCalls.Load())

		require.NoError(t, scheduler.Stop(context.Background()))
	})

	t.Run("start and stop are idempotent", func(t *testing.T) {
		repo := &stubShipmentRepo{}
		scheduler := newTestScheduler(t, repo, DefaultReconcileSchedulerConfig())

		ctx := context.Background()
		require.NoError(t, scheduler.Start(ctx))
		require.NoError(t, scheduler.Start(ctx))
		require.NoError(t, scheduler.Stop(ctx))
		require.NoError(t, scheduler.Stop(ctx))
	})
}
