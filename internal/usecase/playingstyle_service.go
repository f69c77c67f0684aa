package usecase

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// PlayingStyleService places every league team on two-dimensional style
// maps. Teams missing either coordinate are dropped from the map rather
// than plotted at zero.
type PlayingStyleService struct {
	stats         teamstats.Repository
	highlightTeam string
	logger        *logging.Logger
}

func NewPlayingStyleService(stats teamstats.Repository, highlightTeam string, logger *logging.Logger) *PlayingStyleService {
	return &PlayingStyleService{stats: stats, highlightTeam: highlightTeam, logger: logger}
}

// OffensiveScatter maps build volume (passes into the final third)
// against generated threat (xG for).
func (s *PlayingStyleService) OffensiveScatter(ctx context.Context) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PlayingStyleService.OffensiveScatter")
	defer span.End()

	return s.scatter(ctx,
		"Estilo ofensivo",
		teamstats.MetricTeamPassFinalThird, "Pases al último tercio",
		teamstats.MetricTeamXG, "xG a favor",
	)
}

// DefensiveScatter maps conceded build volume against conceded threat.
func (s *PlayingStyleService) DefensiveScatter(ctx context.Context) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PlayingStyleService.DefensiveScatter")
	defer span.End()

	return s.scatter(ctx,
		"Estilo defensivo",
		teamstats.MetricAgainstPassFinal3rd, "Pases al último tercio en contra",
		teamstats.MetricAgainstXG, "xG en contra",
	)
}

func (s *PlayingStyleService) scatter(ctx context.Context, title, xKey, xLabel, yKey, yLabel string) (chart.Spec, error) {
	averages, err := s.stats.ListTeamAverages(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	points := make([]chart.Point, 0, len(averages))
	var sumX, sumY float64
	for _, team := range averages {
		x, ok := team.Metric(xKey)
		if !ok {
			continue
		}
		y, ok := team.Metric(yKey)
		if !ok {
			continue
		}

		role := chart.RolePeer
		if team.Team == s.highlightTeam {
			role = chart.RoleHighlight
		}
		points = append(points, chart.Point{Label: team.Team, X: x, Y: y, Role: role})
		sumX += x
		sumY += y
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	spec := chart.Spec{
		Kind:   chart.KindScatter,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Series: []chart.Series{{Name: "Equipos", Role: chart.RolePeer, Points: points}},
	}
	if len(points) > 0 {
		spec.XMean = sumX / float64(len(points))
		spec.YMean = sumY / float64(len(points))
		spec.ShowMeans = true
	}

	return spec, nil
}
