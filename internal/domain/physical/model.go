package physical

import "time"

// MatchRecord is one player's GPS load for one competition match.
type MatchRecord struct {
	Player         string
	Match          string
	Matchday       int
	Date           time.Time
	MinutesPlayed  float64
	TotalDistance  float64
	HSRDistance    float64
	SprintDistance float64
	TopSpeed       float64
}

// TrainingRecord is one player's GPS load for one training session inside
// a microcycle. Session identifies the day relative to the match (MD-3,
// MD-2, ...).
type TrainingRecord struct {
	Player         string
	Matchday       int
	Session        string
	Date           time.Time
	MinutesPlayed  float64
	TotalDistance  float64
	HSRDistance    float64
	SprintDistance float64
}

// DistanceKind selects which load metric a microcycle view aggregates.
type DistanceKind string

const (
	DistanceTotal  DistanceKind = "total"
	DistanceHSR    DistanceKind = "hsr"
	DistanceSprint DistanceKind = "sprint"
)

func NormalizeDistanceKind(v string) (DistanceKind, bool) {
	switch DistanceKind(v) {
	case DistanceTotal, DistanceHSR, DistanceSprint:
		return DistanceKind(v), true
	case "":
		return DistanceTotal, true
	default:
		return "", false
	}
}

func (r MatchRecord) Distance(kind DistanceKind) float64 {
	switch kind {
	case DistanceHSR:
		return r.HSRDistance
	case DistanceSprint:
		return r.SprintDistance
	default:
		return r.TotalDistance
	}
}

func (r TrainingRecord) Distance(kind DistanceKind) float64 {
	switch kind {
	case DistanceHSR:
		return r.HSRDistance
	case DistanceSprint:
		return r.SprintDistance
	default:
		return r.TotalDistance
	}
}
