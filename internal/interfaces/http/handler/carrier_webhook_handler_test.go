package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appshipping "github.com/shopfront/backend/internal/application/shipping"
	"github.com/shopfront/backend/internal/domain/shared"
	domain "github.com/shopfront/backend/internal/domain/shipping"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/carrier"
)

const webhookTestSecret = "webhook-test-secret"

type stubWebhookRepo struct {
	shipment    *domain.Shipment
	shipments   []domain.Shipment
	lastUpdate  domain.TrackingUpdate
	updateCalls int
}

func (r *stubWebhookRepo) Save(ctx context.Context, s *domain.Shipment) error { return nil }

func (r *stubWebhookRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	return nil, shared.ErrNotFound
}

func (r *stubWebhookRepo) FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*domain.Shipment, error) {
	if r.shipment != nil && r.shipment.CarrierOrderID == carrierOrderID {
		return r.shipment, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubWebhookRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Shipment, error) {
	return r.shipments, nil
}

func (r *stubWebhookRepo) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	if r.shipment != nil && r.shipment.OrderID == orderID {
		return r.shipment, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubWebhookRepo) UpdateTracking(ctx context.Context, carrierOrderID string, update domain.TrackingUpdate) (*domain.Shipment, error) {
	if r.shipment == nil || r.shipment.CarrierOrderID != carrierOrderID {
		return nil, shared.ErrNotFound
	}
	r.updateCalls++
	r.lastUpdate = update
	r.shipment.ApplyTracking(update)
	return r.shipment, nil
}

func (r *stubWebhookRepo) FindStaleOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

type stubWebhookGateway struct {
	record *domain.TrackingRecord
	batch  []domain.TrackingRecord
	quotes []domain.ShippingOption
	err    error
}

func (g *stubWebhookGateway) Quote(ctx context.Context, req domain.QuoteRequest) ([]domain.ShippingOption, error) {
	return g.quotes, g.err
}

func (g *stubWebhookGateway) AddToCart(ctx context.Context, req domain.CartRequest) (*domain.CartResult, error) {
	return nil, nil
}

func (g *stubWebhookGateway) GenerateLabels(ctx context.Context, carrierOrderIDs []string) ([]domain.LabelResult, error) {
	return nil, nil
}

func (g *stubWebhookGateway) GetOrder(ctx context.Context, carrierOrderID string) (*domain.TrackingRecord, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.record != nil {
		return g.record, nil
	}
	return &domain.TrackingRecord{CarrierOrderID: carrierOrderID}, nil
}

func (g *stubWebhookGateway) FetchTrackingBatch(ctx context.Context, carrierOrderIDs []string) ([]domain.TrackingRecord, error) {
	return g.batch, g.err
}

func signWebhookBody(t *testing.T, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookRouter(t *testing.T, repo *stubWebhookRepo, gateway *stubWebhookGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	service := appshipping.NewWebhookService(appshipping.WebhookServiceConfig{
		WebhookSecret: webhookTestSecret,
		ShipmentRepo:  repo,
		Gateway:       gateway,
		Idempotency:   store,
		Logger:        zap.NewNop(),
	})
	h := NewCarrierWebhookHandler(service, zap.NewNop())

	router := gin.New()
	router.POST("/webhooks/carrier", h.Handle)
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/carrier", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Carrier-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCarrierWebhookHandler_Handle(t *testing.T) {
	t.Run("applies recognized event and returns 200", func(t *testing.T) {
		shipment, err := domain.NewShipment(uuid.New(), "ME-123")
		require.NoError(t, err)
		repo := &stubWebhookRepo{shipment: shipment}
		gateway := &stubWebhookGateway{
			record: &domain.TrackingRecord{
				CarrierOrderID: "ME-123",
				Update:         domain.TrackingUpdate{Code: domain.StringPtr("TRK999")},
			},
		}
		router := newWebhookRouter(t, repo, gateway)

		body := []byte(`{"id":"evt-1","event":"order.posted","data":{"id":"ME-123"}}`)
		w := postWebhook(router, body, signWebhookBody(t, body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, repo.updateCalls)
		require.NotNil(t, repo.lastUpdate.Code)
		assert.Equal(t, "TRK999", *repo.lastUpdate.Code)
		assert.Equal(t, domain.StatusPosted, shipment.Status)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Event string `json:"event"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "order.posted", resp.Data.Event)
	})

	t.Run("rejects missing signature with 401", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		w := postWebhook(router, []byte(`{"event":"order.posted"}`), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, repo.updateCalls)
	})

	t.Run("rejects tampered body with 401", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		body := []byte(`{"id":"evt-2","event":"order.posted","data":{"id":"ME-123"}}`)
		signature := signWebhookBody(t, body)
		tampered := bytes.Replace(body, []byte("ME-123"), []byte("ME-999"), 1)
		w := postWebhook(router, tampered, signature)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, repo.updateCalls)
	})

	t.Run("missing and mismatched signatures are indistinguishable", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		body := []byte(`{"id":"evt-6","event":"order.posted","data":{"id":"ME-123"}}`)
		missing := postWebhook(router, body, "")
		wrong := postWebhook(router, body, signWebhookBody(t, []byte("other body")))

		assert.Equal(t, http.StatusUnauthorized, missing.Code)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, missing.Body.Bytes(), wrong.Body.Bytes())
		assert.Equal(t, 0, repo.updateCalls)
	})

	t.Run("acknowledges unrecognized event", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		body := []byte(`{"id":"evt-3","event":"order.refunded","data":{"id":"ME-123"}}`)
		w := postWebhook(router, body, signWebhookBody(t, body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, repo.updateCalls)
	})

	t.Run("returns 404 for unknown carrier order", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		body := []byte(`{"id":"evt-4","event":"order.posted","data":{"id":"ME-unknown"}}`)
		w := postWebhook(router, body, signWebhookBody(t, body))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 502 when the canonical re-fetch fails", func(t *testing.T) {
		shipment, err := domain.NewShipment(uuid.New(), "ME-123")
		require.NoError(t, err)
		repo := &stubWebhookRepo{shipment: shipment}
		gateway := &stubWebhookGateway{err: &carrier.APIError{StatusCode: 500, Body: "upstream down"}}
		router := newWebhookRouter(t, repo, gateway)

		body := []byte(`{"id":"evt-5","event":"order.posted","data":{"id":"ME-123"}}`)
		w := postWebhook(router, body, signWebhookBody(t, body))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 0, repo.updateCalls)
	})

	t.Run("rejects oversized payload with 413", func(t *testing.T) {
		repo := &stubWebhookRepo{}
		router := newWebhookRouter(t, repo, &stubWebhookGateway{})

		body := []byte(strings.Repeat("a", maxWebhookPayloadSize+1))
		w := postWebhook(router, body, signWebhookBody(t, body))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, 0, repo.updateCalls)
	})
}
