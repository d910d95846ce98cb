package carrier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractTracking(t *testing.T) {
	t.Run("flat tracking fields", func(t *testing.T) {
		rec := orderRecord{
			ID:          "ord-1",
			Tracking:    "AA123",
			TrackingURL: "https://track.example/AA123",
			Courier:     &courierInfo{Name: "Correios"},
		}

		u := extractTracking(rec)
		require.NotNil(t, u.Code)
		assert.Equal(t, "AA123", *u.Code)
		assert.Equal(t, "https://track.example/AA123", *u.URL)
		assert.Equal(t, "Correios", *u.CarrierName)
	})

	t.Run("nested tracking_info takes priority over flat fields", func(t *testing.T) {
		rec := orderRecord{
			ID:           "ord-1",
			Tracking:     "FLAT",
			TrackingInfo: &trackingInfo{Code: "NESTED", Carrier: "Jadlog"},
		}

		u := extractTracking(rec)
		assert.Equal(t, "NESTED", *u.Code)
		assert.Equal(t, "Jadlog", *u.CarrierName)
	})

	t.Run("carrier name from service company when courier absent", func(t *testing.T) {
		rec := orderRecord{
			ID:       "ord-1",
			Tracking: "AA123",
			Service:  &serviceInfo{Company: &companyInfo{Name: "Azul Cargo"}},
		}

		u := extractTracking(rec)
		assert.Equal(t, "Azul Cargo", *u.CarrierName)
	})

	t.Run("no tracking yet is not an error", func(t *testing.T) {
		u := extractTracking(orderRecord{ID: "ord-1", Status: "generated"})
		assert.False(t, u.HasTracking())
		assert.Nil(t, u.Code)
		assert.Nil(t, u.URL)
	})

	t.Run("carrier-reported status rides along", func(t *testing.T) {
		u := extractTracking(orderRecord{ID: "ord-1", Tracking: "AA123", Status: "delivered"})
		require.NotNil(t, u.Status)
		assert.Equal(t, "delivered", *u.Status)
	})

	t.Run("absent status stays nil so it never erases a known one", func(t *testing.T) {
		u := extractTracking(orderRecord{ID: "ord-1", Tracking: "AA123"})
		assert.Nil(t, u.Status)
	})
}

func TestExtractRecord(t *testing.T) {
	log := zap.NewNop()

	t.Run("recognized shape", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"ord-9","tracking":"BB456","tracking_url":"https://t/BB456"}`)

		rec, ok := extractRecord(raw, log)
		require.True(t, ok)
		assert.Equal(t, "ord-9", rec.CarrierOrderID)
		assert.Equal(t, "BB456", *rec.Update.Code)
	})

	t.Run("unknown shape degrades without error", func(t *testing.T) {
		rec, ok := extractRecord(json.RawMessage(`["not","an","object"]`), log)
		assert.False(t, ok)
		assert.Nil(t, rec)
	})

	t.Run("object without id is unrecognized", func(t *testing.T) {
		_, ok := extractRecord(json.RawMessage(`{"tracking":"X"}`), log)
		assert.False(t, ok)
	})
}
