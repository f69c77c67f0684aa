package teamstats

// Raw per-match average metrics published for every team in the league.
const (
	MetricTeamXG               = "team_xgShot"
	MetricTeamGoals            = "team_goal"
	MetricTeamShots            = "team_shot"
	MetricTeamShotsOnTarget    = "team_shotSuccess"
	MetricTeamPossession       = "team_possession"
	MetricTeamPPDA             = "team_ppda"
	MetricTeamPassFinalThird   = "team_passToFinalThird"
	MetricAgainstXG            = "opp_xgShot"
	MetricAgainstGoals         = "opp_goal"
	MetricAgainstShots         = "opp_shot"
	MetricAgainstShotsOnTarget = "opp_shotSuccess"
	MetricAgainstPassFinal3rd  = "opp_passToFinalThird"
)

// TeamAverages holds one team's season per-match averages keyed by raw
// metric name. A missing key means the source had no value for that
// metric; it is never coerced to zero.
type TeamAverages struct {
	Team    string
	Metrics map[string]float64
}

func (t TeamAverages) Metric(key string) (float64, bool) {
	v, ok := t.Metrics[key]
	return v, ok
}
