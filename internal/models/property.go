package models

// Property is the read-only view of a listing owned by the listing service.
type Property struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	Address      string `json:"address"`
	City         string `json:"city"`
	PropertyType string `json:"property_type"`
}
