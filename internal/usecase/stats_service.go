package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// SummaryMetric is one headline number in the team summary.
type SummaryMetric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TeamSummary is the highlighted team's headline card: its per-match
// averages plus the league position by goals scored.
type TeamSummary struct {
	Team          string          `json:"team"`
	Metrics       []SummaryMetric `json:"metrics"`
	GoalsPosition int             `json:"goalsPosition"`
	Teams         int             `json:"teams"`
}

var comparisonMetrics = []struct {
	key   string
	label string
}{
	{key: teamstats.MetricTeamXG, label: "xG"},
	{key: teamstats.MetricTeamGoals, label: "Goles"},
	{key: teamstats.MetricTeamShots, label: "Tiros"},
	{key: teamstats.MetricTeamShotsOnTarget, label: "Tiros a puerta"},
	{key: teamstats.MetricTeamPossession, label: "Posesión"},
	{key: teamstats.MetricTeamPPDA, label: "PPDA"},
}

// StatsService builds the highlighted team's statistical summary views.
type StatsService struct {
	stats         teamstats.Repository
	highlightTeam string
	logger        *logging.Logger
}

func NewStatsService(stats teamstats.Repository, highlightTeam string, logger *logging.Logger) *StatsService {
	return &StatsService{stats: stats, highlightTeam: highlightTeam, logger: logger}
}

// Summary returns the highlighted team's headline averages and its league
// position by goals scored. The position counts teams scoring strictly
// more, so equal tallies share a position.
func (s *StatsService) Summary(ctx context.Context) (TeamSummary, error) {
	ctx, span := startSpan(ctx, "StatsService.Summary")
	defer span.End()

	averages, err := s.stats.ListTeamAverages(ctx)
	if err != nil {
		return TeamSummary{}, errors.Mark(err, ErrDataUnavailable)
	}

	var team teamstats.TeamAverages
	found := false
	for _, t := range averages {
		if t.Team == s.highlightTeam {
			team = t
			found = true
			break
		}
	}
	if !found {
		return TeamSummary{}, errors.Mark(fmt.Errorf("team %q not in league averages", s.highlightTeam), ErrNotFound)
	}

	summary := TeamSummary{Team: team.Team, Teams: len(averages)}
	for _, metric := range comparisonMetrics {
		if v, ok := team.Metric(metric.key); ok {
			summary.Metrics = append(summary.Metrics, SummaryMetric{Key: metric.key, Label: metric.label, Value: v})
		}
	}

	if goals, ok := team.Metric(teamstats.MetricTeamGoals); ok {
		position := 1
		for _, t := range averages {
			if v, ok := t.Metric(teamstats.MetricTeamGoals); ok && v > goals {
				position++
			}
		}
		summary.GoalsPosition = position
	}

	return summary, nil
}

// LeagueComparison compares the highlighted team against the league
// average over six metrics as a radar spec.
func (s *StatsService) LeagueComparison(ctx context.Context) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "StatsService.LeagueComparison")
	defer span.End()

	averages, err := s.stats.ListTeamAverages(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	var team teamstats.TeamAverages
	found := false
	for _, t := range averages {
		if t.Team == s.highlightTeam {
			team = t
			found = true
			break
		}
	}
	if !found {
		return chart.Spec{}, errors.Mark(fmt.Errorf("team %q not in league averages", s.highlightTeam), ErrNotFound)
	}

	var teamValues, leagueValues []chart.Value
	for _, metric := range comparisonMetrics {
		own, ok := team.Metric(metric.key)
		if !ok {
			continue
		}

		var sum float64
		var n int
		for _, t := range averages {
			if v, ok := t.Metric(metric.key); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}

		teamValues = append(teamValues, chart.Value{Label: metric.label, Value: own, Role: chart.RoleHighlight})
		leagueValues = append(leagueValues, chart.Value{Label: metric.label, Value: sum / float64(n), Role: chart.RoleAverage})
	}

	return chart.Spec{
		Kind:  chart.KindRadar,
		Title: "Comparativa con la liga",
		Series: []chart.Series{
			{Name: team.Team, Role: chart.RoleHighlight, Values: teamValues},
			{Name: LeagueAverageLabel, Role: chart.RoleAverage, Values: leagueValues},
		},
	}, nil
}
