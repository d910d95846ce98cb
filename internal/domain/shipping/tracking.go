package shipping

// TrackingUpdate is the merge input for a coalescing shipment update.
// Each field is independently optional; nil means "no new information",
// never "erase the stored value".
type TrackingUpdate struct {
	Code        *string
	URL         *string
	CarrierName *string
	Status      *string
}

// HasTracking reports whether the update carries a tracking code. An
// update without a code is an expected transient state (label generated
// but not yet handed to a courier), not an error.
func (u TrackingUpdate) HasTracking() bool {
	return u.Code != nil && *u.Code != ""
}

// IsEmpty reports whether the update carries no information at all
func (u TrackingUpdate) IsEmpty() bool {
	return u.Code == nil && u.URL == nil && u.CarrierName == nil && u.Status == nil
}

// Merge overlays other on top of u, field by field. Fields set in other
// win; fields absent in other keep u's value.
func (u TrackingUpdate) Merge(other TrackingUpdate) TrackingUpdate {
	out := u
	if other.Code != nil {
		out.Code = other.Code
	}
	if other.URL != nil {
		out.URL = other.URL
	}
	if other.CarrierName != nil {
		out.CarrierName = other.CarrierName
	}
	if other.Status != nil {
		out.Status = other.Status
	}
	return out
}

// StringPtr returns a pointer to s, or nil if s is empty. Convenience for
// building TrackingUpdate values from optional wire fields.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
