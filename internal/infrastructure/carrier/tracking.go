package carrier

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/domain/shipping"
)

// extractTracking maps one carrier order record to a normalized tracking
// update. Known key placements are probed in a fixed priority order:
// the nested tracking_info object first, then the flat tracking fields,
// and for the carrier name tracking_info, then courier, then the service's
// company. A record without a tracking code yields an empty update, not an
// error: absence of a code is the expected state between label generation
// and courier handoff.
func extractTracking(rec orderRecord) shipping.TrackingUpdate {
	var update shipping.TrackingUpdate

	if ti := rec.TrackingInfo; ti != nil {
		update.Code = shipping.StringPtr(ti.Code)
		update.URL = shipping.StringPtr(ti.URL)
		update.CarrierName = shipping.StringPtr(ti.Carrier)
	}
	if update.Code == nil {
		update.Code = shipping.StringPtr(rec.Tracking)
	}
	if update.URL == nil {
		update.URL = shipping.StringPtr(rec.TrackingURL)
	}
	if update.CarrierName == nil && rec.Courier != nil {
		update.CarrierName = shipping.StringPtr(rec.Courier.Name)
	}
	if update.CarrierName == nil && rec.Service != nil && rec.Service.Company != nil {
		update.CarrierName = shipping.StringPtr(rec.Service.Company.Name)
	}
	// The carrier-reported status rides along so reconciliation converges
	// a stale status even when the webhook for it was lost
	update.Status = shipping.StringPtr(rec.Status)

	return update
}

// extractRecord parses a raw carrier payload into a normalized tracking
// record. Unrecognized shapes degrade to (nil, false) and are logged with
// the raw payload for schema-coverage follow-up; they are never an error.
func extractRecord(raw json.RawMessage, log *zap.Logger) (*shipping.TrackingRecord, bool) {
	rec, ok := decodeOrderRecord(raw)
	if !ok {
		log.Warn("unrecognized carrier tracking record shape",
			zap.ByteString("raw", raw))
		return nil, false
	}

	return &shipping.TrackingRecord{
		CarrierOrderID: rec.ID,
		Update:         extractTracking(rec),
	}, true
}
