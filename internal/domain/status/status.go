package status

// QualityStatus represents a quality state in the manufacturing lifecycle
type QualityStatus string

const (
	StatusPending      QualityStatus = "PENDING"
	StatusPassed       QualityStatus = "PASSED"
	StatusFailed       QualityStatus = "FAILED"
	StatusHold         QualityStatus = "HOLD"
	StatusReleased     QualityStatus = "RELEASED"
	StatusQuarantined  QualityStatus = "QUARANTINED"
	StatusCondApproved QualityStatus = "COND_APPROVED"
)

// Metadata carries the display and semantic attributes of a quality status.
// The catalog is compiled in and never changes at runtime.
type Metadata struct {
	Code              QualityStatus `json:"code"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Color             string        `json:"color"`
	Icon              string        `json:"icon"`
	AllowsShipment    bool          `json:"allows_shipment"`
	AllowsConsumption bool          `json:"allows_consumption"`
}

// catalog holds the fixed set of 7 statuses in their canonical order.
var catalog = []Metadata{
	{StatusPending, "Pending", "Awaiting inspection", "gray", "Clock", false, false},
	{StatusPassed, "Passed", "Inspection passed", "green", "CheckCircle", true, true},
	{StatusFailed, "Failed", "Inspection failed", "red", "XCircle", false, false},
	{StatusHold, "Hold", "Under investigation", "yellow", "PauseCircle", false, false},
	{StatusReleased, "Released", "Released for shipment", "blue", "Truck", true, true},
	{StatusQuarantined, "Quarantined", "Isolated pending disposition", "orange", "ShieldAlert", false, false},
	{StatusCondApproved, "Conditionally Approved", "Approved with restrictions", "purple", "AlertCircle", false, true},
}

var byCode = func() map[QualityStatus]Metadata {
	m := make(map[QualityStatus]Metadata, len(catalog))
	for _, meta := range catalog {
		m[meta.Code] = meta
	}
	return m
}()

// ListStatusTypes returns the full status catalog in canonical order.
// The returned slice is a copy; callers may not mutate the catalog.
func ListStatusTypes() []Metadata {
	out := make([]Metadata, len(catalog))
	copy(out, catalog)
	return out
}

// MetadataFor returns the metadata for a status code.
func MetadataFor(s QualityStatus) (Metadata, bool) {
	meta, ok := byCode[s]
	return meta, ok
}

// IsValid returns true if the status is one of the 7 catalog entries
func (s QualityStatus) IsValid() bool {
	_, ok := byCode[s]
	return ok
}

// String returns the string representation of the status
func (s QualityStatus) String() string {
	return string(s)
}

// IsAllowedForShipment reports whether material in this status may ship.
func IsAllowedForShipment(s QualityStatus) bool {
	return byCode[s].AllowsShipment
}

// IsAllowedForConsumption reports whether material in this status may be
// consumed in production.
func IsAllowedForConsumption(s QualityStatus) bool {
	return byCode[s].AllowsConsumption
}
