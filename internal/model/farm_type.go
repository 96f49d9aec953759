package model

// FarmType represents a row in the `farm_types` table. Names are unique.
type FarmType struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
