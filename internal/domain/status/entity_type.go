package status

// EntityType identifies the kind of entity a quality status is attached to
type EntityType string

const (
	EntityLicensePlate EntityType = "lp"
	EntityBatch        EntityType = "batch"
	EntityInspection   EntityType = "inspection"
	EntityNCR          EntityType = "ncr"
)

var validEntityTypes = map[EntityType]bool{
	EntityLicensePlate: true,
	EntityBatch:        true,
	EntityInspection:   true,
	EntityNCR:          true,
}

// IsValid returns true if the entity type is recognized
func (e EntityType) IsValid() bool {
	return validEntityTypes[e]
}

// String returns the string representation of the entity type
func (e EntityType) String() string {
	return string(e)
}

// UsesQualityGraph reports whether the entity kind moves through the 7-state
// quality graph. NCRs use the 3-state document lifecycle instead.
func (e EntityType) UsesQualityGraph() bool {
	return e == EntityLicensePlate || e == EntityBatch || e == EntityInspection
}
