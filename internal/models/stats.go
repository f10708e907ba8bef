package models

// ResourceStats aggregates the identifiers of the visible rows of a resource.
// Avg, Max and Min are nil when the collection is empty.
type ResourceStats struct {
	Count int64    `json:"count"`
	Avg   *float64 `json:"avg"`
	Max   *int64   `json:"max"`
	Min   *int64   `json:"min"`
}
