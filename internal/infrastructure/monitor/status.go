package monitor

import "time"

// Status is the result of the latest round of probes.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every probe succeeded. A status with no probes is healthy.
func (s Status) Healthy() bool {
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
