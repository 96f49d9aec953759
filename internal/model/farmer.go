package model

// Farmer represents a row in the `farmers` table. NationalID is unique and
// Location is free text. A farmer references both a farm type and a crop.
type Farmer struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Location   string `json:"location"`
	FarmTypeID uint64 `json:"farm_type_id"`
	CropID     uint64 `json:"crop_id"`
}

// FarmerDetail is the read representation of a farmer: the foreign keys are
// enriched with the referenced names so list and retrieve responses can be
// rendered without extra lookups.
type FarmerDetail struct {
	Farmer
	FarmTypeName string `json:"farm_type"`
	CropName     string `json:"crop"`
}
