package reader

import "time"

// ProgressPhase represents the current update phase
type ProgressPhase string

const (
	PhaseFetching ProgressPhase = "fetching"
	PhaseStoring  ProgressPhase = "storing"
)

// Progress represents the current update progress
type Progress struct {
	Phase       ProgressPhase
	Current     int       // feeds handled so far
	Total       int       // feeds in this run
	Description string    // feed alias
	StartedAt   time.Time // when the run started, for ETA calculation
}

// ProgressCallback is called with progress updates during UpdateAll
type ProgressCallback func(Progress)

// ETA returns the estimated time remaining based on current progress
func (p Progress) ETA() time.Duration {
	if p.Current == 0 || p.Total == 0 || p.StartedAt.IsZero() {
		return 0
	}
	elapsed := time.Since(p.StartedAt)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate <= 0 {
		return 0
	}
	remaining := p.Total - p.Current
	return time.Duration(float64(remaining)/rate) * time.Second
}

// Percentage returns the completion percentage (0-100)
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Current * 100) / p.Total
}
