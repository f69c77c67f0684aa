package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// LeagueAverageLabel names the synthetic row appended to metric boards.
const LeagueAverageLabel = "Promedio Liga"

// GlobalRankingEntry is the highlighted team's standing in one derived
// metric.
type GlobalRankingEntry struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Position int     `json:"position"`
	Teams    int     `json:"teams"`
	Inverse  bool    `json:"inverse"`
}

// BoardRow is one line of a metric board.
type BoardRow struct {
	Position  int     `json:"position"`
	Team      string  `json:"team"`
	Value     float64 `json:"value"`
	Highlight bool    `json:"highlight"`
	Average   bool    `json:"average"`
}

// MetricBoard is the ordered league table for one raw metric, best team
// first, with a synthetic league average row appended after the ranked
// teams.
type MetricBoard struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Inverse bool       `json:"inverse"`
	Rows    []BoardRow `json:"rows"`
}

type derivedMetric struct {
	key     string
	label   string
	inverse bool
	value   func(t teamstats.TeamAverages) (float64, bool)
}

// RankingsService ranks every league team on raw and derived metrics.
type RankingsService struct {
	stats          teamstats.Repository
	highlightTeam  string
	rankingMetrics map[string]string
	inverseMetrics map[string]bool
	logger         *logging.Logger
}

func NewRankingsService(stats teamstats.Repository, highlightTeam string, rankingMetrics map[string]string, inverseMetrics map[string]bool, logger *logging.Logger) *RankingsService {
	return &RankingsService{
		stats:          stats,
		highlightTeam:  highlightTeam,
		rankingMetrics: rankingMetrics,
		inverseMetrics: inverseMetrics,
		logger:         logger,
	}
}

// safeDiv divides a by b, reporting false on a zero denominator so the
// team is excluded from the metric instead of ranked with a bogus zero.
func safeDiv(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func rawMetric(key string) func(teamstats.TeamAverages) (float64, bool) {
	return func(t teamstats.TeamAverages) (float64, bool) { return t.Metric(key) }
}

func ratioMetric(numKey, denKey string) func(teamstats.TeamAverages) (float64, bool) {
	return func(t teamstats.TeamAverages) (float64, bool) {
		num, ok := t.Metric(numKey)
		if !ok {
			return 0, false
		}
		den, ok := t.Metric(denKey)
		if !ok {
			return 0, false
		}
		return safeDiv(num, den)
	}
}

func derivedMetrics() []derivedMetric {
	return []derivedMetric{
		{
			key:     "build_efficiency",
			label:   "Eficacia de construcción ofensiva",
			value:   ratioMetric(teamstats.MetricTeamShots, teamstats.MetricTeamPassFinalThird),
			inverse: false,
		},
		{
			key:     "xg_for",
			label:   "xG a favor",
			value:   rawMetric(teamstats.MetricTeamXG),
			inverse: false,
		},
		{
			key:     "finishing_efficiency",
			label:   "Eficacia de finalización",
			value:   ratioMetric(teamstats.MetricTeamGoals, teamstats.MetricTeamXG),
			inverse: false,
		},
		{
			key:     "goals_for",
			label:   "Goles a favor",
			value:   rawMetric(teamstats.MetricTeamGoals),
			inverse: false,
		},
		{
			key:     "defensive_containment",
			label:   "Contención defensiva",
			value:   ratioMetric(teamstats.MetricAgainstShots, teamstats.MetricAgainstPassFinal3rd),
			inverse: true,
		},
		{
			key:     "xg_against",
			label:   "xG en contra",
			value:   rawMetric(teamstats.MetricAgainstXG),
			inverse: true,
		},
		{
			key:     "prevention_efficiency",
			label:   "Eficacia de prevención",
			value:   ratioMetric(teamstats.MetricAgainstGoals, teamstats.MetricAgainstXG),
			inverse: true,
		},
		{
			key:     "goals_against",
			label:   "Goles en contra",
			value:   rawMetric(teamstats.MetricAgainstGoals),
			inverse: true,
		},
	}
}

// rankTeams orders teams by metric value, best first. Direction follows
// the inverse flag; ties break by team name ascending.
func rankTeams(values map[string]float64, inverse bool) []string {
	teams := make([]string, 0, len(values))
	for team := range values {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		vi, vj := values[teams[i]], values[teams[j]]
		if vi != vj {
			if inverse {
				return vi < vj
			}
			return vi > vj
		}
		return teams[i] < teams[j]
	})

	return teams
}

// GlobalRanking computes the highlighted team's league position across
// the eight derived metrics. Metrics where the team has no value are
// skipped.
func (s *RankingsService) GlobalRanking(ctx context.Context) ([]GlobalRankingEntry, error) {
	ctx, span := startSpan(ctx, "RankingsService.GlobalRanking")
	defer span.End()

	averages, err := s.stats.ListTeamAverages(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrDataUnavailable)
	}

	out := make([]GlobalRankingEntry, 0, 8)
	for _, metric := range derivedMetrics() {
		values := map[string]float64{}
		for _, team := range averages {
			if v, ok := metric.value(team); ok {
				values[team.Team] = v
			}
		}

		ordered := rankTeams(values, metric.inverse)
		position := 0
		for i, team := range ordered {
			if team == s.highlightTeam {
				position = i + 1
				break
			}
		}
		if position == 0 {
			continue
		}

		out = append(out, GlobalRankingEntry{
			Key:      metric.key,
			Label:    metric.label,
			Value:    values[s.highlightTeam],
			Position: position,
			Teams:    len(ordered),
			Inverse:  metric.inverse,
		})
	}

	return out, nil
}

// MetricBoards builds one ordered board per configured raw metric, each
// closed by a synthetic league average row.
func (s *RankingsService) MetricBoards(ctx context.Context) ([]MetricBoard, error) {
	ctx, span := startSpan(ctx, "RankingsService.MetricBoards")
	defer span.End()

	averages, err := s.stats.ListTeamAverages(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrDataUnavailable)
	}

	keys := make([]string, 0, len(s.rankingMetrics))
	for key := range s.rankingMetrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]MetricBoard, 0, len(keys))
	for _, key := range keys {
		inverse := s.inverseMetrics[key]

		values := map[string]float64{}
		var sum float64
		for _, team := range averages {
			if v, ok := team.Metric(key); ok {
				values[team.Team] = v
				sum += v
			}
		}

		board := MetricBoard{Key: key, Label: s.rankingMetrics[key], Inverse: inverse}
		for i, team := range rankTeams(values, inverse) {
			board.Rows = append(board.Rows, BoardRow{
				Position:  i + 1,
				Team:      team,
				Value:     values[team],
				Highlight: team == s.highlightTeam,
			})
		}
		if len(values) > 0 {
			board.Rows = append(board.Rows, BoardRow{
				Team:    LeagueAverageLabel,
				Value:   sum / float64(len(values)),
				Average: true,
			})
		}

		out = append(out, board)
	}

	return out, nil
}
