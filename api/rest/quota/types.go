package quota

// AvailabilityResponse reports whether the caller may generate right now
type AvailabilityResponse struct {
	Available bool `json:"available"`
}
