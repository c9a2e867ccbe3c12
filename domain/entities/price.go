package entities

// PriceData is the latest price snapshot for an item in one region.
// Timestamps are unix seconds; a zero Timestamp means the API has no data.
type PriceData struct {
	Price              float64 `json:"price"`
	Volume             float64 `json:"volume"`
	Timestamp          float64 `json:"timestamp"`
	LastKnownPrice     float64 `json:"last_known_price"`
	LastKnownTimestamp float64 `json:"last_known_timestamp"`
}

// HasData reports whether the snapshot carries a timestamp
func (p PriceData) HasData() bool {
	return p.Timestamp != 0
}

// IsStale reports whether the current price is missing but a last known price exists
func (p PriceData) IsStale() bool {
	return p.Price == 0 && p.LastKnownPrice != 0
}
