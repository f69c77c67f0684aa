package results

// MatchResult is the final score of one competition match, used to label
// load charts with the sporting outcome.
type MatchResult struct {
	Matchday     int
	Opponent     string
	GoalsFor     int
	GoalsAgainst int
}

func (r MatchResult) Label() string {
	switch {
	case r.GoalsFor > r.GoalsAgainst:
		return "W"
	case r.GoalsFor < r.GoalsAgainst:
		return "L"
	default:
		return "D"
	}
}
