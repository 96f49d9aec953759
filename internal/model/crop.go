package model

// Crop represents a row in the `crops` table. Image holds the relative path
// of the stored image file under the media directory, or an empty string when
// no image was uploaded.
type Crop struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
