// Package queue defines message payloads exchanged over the message broker.
package queue

// FarmerRegisteredEvent is published when a farmer record is successfully
// created. It carries enough denormalized data for downstream consumers to
// log or notify without querying the primary database.
type FarmerRegisteredEvent struct {
	FarmerID     uint64 `json:"farmer_id"`
	Name         string `json:"name"`
	NationalID   string `json:"national_id"`
	Location     string `json:"location"`
	FarmType     string `json:"farm_type"`
	Crop         string `json:"crop"`
	RegisteredAt string `json:"registered_at"`
}
