package entities

// Ingredient name is deliberately not unique: the same product can exist
// with different measurement units (e.g. "flour"/"g" and "flour"/"cup").
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:150;index" json:"name"`
	MeasurementUnit string `gorm:"size:150" json:"measurement_unit"`
}
