package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
)

// Artifact kinds. The segment before the dot is the refresh scope, so
// "physical" refreshes every physical artifact at once.
const (
	ArtifactPhysicalCollective = "physical.collective"
	ArtifactPhysicalIndividual = "physical.individual"
	ArtifactPhysicalEvolution  = "physical.evolution"
	ArtifactPhysicalMatches    = "physical.matches"
	ArtifactPhysicalScatter    = "physical.scatter"
	ArtifactMicrocycleList     = "microcycle.list"
	ArtifactMicrocycleLoad     = "microcycle.load"
	ArtifactRankingsGlobal     = "rankings.global"
	ArtifactRankingsBoards     = "rankings.boards"
	ArtifactStyleOffensive     = "style.offensive"
	ArtifactStyleDefensive     = "style.defensive"
	ArtifactStatsSummary       = "stats.summary"
	ArtifactStatsComparison    = "stats.comparison"
)

// Catalog binds every dashboard artifact kind to its aggregator and the
// renderer.
type Catalog struct {
	Physical        *PhysicalService
	Microcycles     *MicrocycleService
	Rankings        *RankingsService
	PlayingStyle    *PlayingStyleService
	Stats           *StatsService
	Renderer        ChartRenderer
	CurrentMatchday int
}

// RegisterAll registers the full artifact catalog on the service,
// including the warm set recomputed after forced refreshes.
func (c Catalog) RegisterAll(artifacts *ArtifactService) {
	artifacts.Register(ArtifactPhysicalCollective, c.renderChart(func(ctx context.Context, params map[string]string) (chart.Spec, error) {
		kind, err := distanceParam(params)
		if err != nil {
			return chart.Spec{}, err
		}
		return c.Physical.CollectiveBars(ctx, kind)
	}),
		ArtifactRequest{Kind: ArtifactPhysicalCollective, Params: map[string]string{"kind": string(physical.DistanceTotal)}},
	)

	artifacts.Register(ArtifactPhysicalIndividual, c.renderChart(func(ctx context.Context, params map[string]string) (chart.Spec, error) {
		kind, err := distanceParam(params)
		if err != nil {
			return chart.Spec{}, err
		}
		return c.Physical.IndividualBars(ctx, kind)
	}),
		ArtifactRequest{Kind: ArtifactPhysicalIndividual, Params: map[string]string{"kind": string(physical.DistanceTotal)}},
	)

	artifacts.Register(ArtifactPhysicalEvolution, c.renderChart(func(ctx context.Context, _ map[string]string) (chart.Spec, error) {
		return c.Physical.Evolution(ctx)
	}),
		ArtifactRequest{Kind: ArtifactPhysicalEvolution},
	)

	artifacts.Register(ArtifactPhysicalMatches, func(ctx context.Context, _ map[string]string) (chart.Artifact, error) {
		matches, err := c.Physical.MatchList(ctx)
		if err != nil {
			return chart.Artifact{}, err
		}
		return jsonArtifact(matches)
	},
		ArtifactRequest{Kind: ArtifactPhysicalMatches},
	)

	artifacts.Register(ArtifactPhysicalScatter, c.renderChart(func(ctx context.Context, params map[string]string) (chart.Spec, error) {
		return c.Physical.IndividualScatter(ctx, params["match"])
	}),
		ArtifactRequest{Kind: ArtifactPhysicalScatter},
	)

	artifacts.Register(ArtifactMicrocycleList, func(ctx context.Context, _ map[string]string) (chart.Artifact, error) {
		cycles, err := c.Microcycles.List(ctx)
		if err != nil {
			return chart.Artifact{}, err
		}
		return jsonArtifact(cycles)
	},
		ArtifactRequest{Kind: ArtifactMicrocycleList},
	)

	artifacts.Register(ArtifactMicrocycleLoad, c.renderChart(func(ctx context.Context, params map[string]string) (chart.Spec, error) {
		matchday, err := matchdayParam(params)
		if err != nil {
			return chart.Spec{}, err
		}
		kind, err := distanceParam(params)
		if err != nil {
			return chart.Spec{}, err
		}
		return c.Microcycles.TeamLoad(ctx, matchday, kind)
	}),
		ArtifactRequest{Kind: ArtifactMicrocycleLoad, Params: map[string]string{
			"matchday": strconv.Itoa(c.CurrentMatchday),
			"kind":     string(physical.DistanceTotal),
		}},
	)

	artifacts.Register(ArtifactRankingsGlobal, func(ctx context.Context, _ map[string]string) (chart.Artifact, error) {
		ranking, err := c.Rankings.GlobalRanking(ctx)
		if err != nil {
			return chart.Artifact{}, err
		}
		return jsonArtifact(ranking)
	},
		ArtifactRequest{Kind: ArtifactRankingsGlobal},
	)

	artifacts.Register(ArtifactRankingsBoards, func(ctx context.Context, _ map[string]string) (chart.Artifact, error) {
		boards, err := c.Rankings.MetricBoards(ctx)
		if err != nil {
			return chart.Artifact{}, err
		}
		return jsonArtifact(boards)
	},
		ArtifactRequest{Kind: ArtifactRankingsBoards},
	)

	artifacts.Register(ArtifactStyleOffensive, c.renderChart(func(ctx context.Context, _ map[string]string) (chart.Spec, error) {
		return c.PlayingStyle.OffensiveScatter(ctx)
	}),
		ArtifactRequest{Kind: ArtifactStyleOffensive},
	)

	artifacts.Register(ArtifactStyleDefensive, c.renderChart(func(ctx context.Context, _ map[string]string) (chart.Spec, error) {
		return c.PlayingStyle.DefensiveScatter(ctx)
	}),
		ArtifactRequest{Kind: ArtifactStyleDefensive},
	)

	artifacts.Register(ArtifactStatsSummary, func(ctx context.Context, _ map[string]string) (chart.Artifact, error) {
		summary, err := c.Stats.Summary(ctx)
		if err != nil {
			return chart.Artifact{}, err
		}
		return jsonArtifact(summary)
	},
		ArtifactRequest{Kind: ArtifactStatsSummary},
	)

	artifacts.Register(ArtifactStatsComparison, c.renderChart(func(ctx context.Context, _ map[string]string) (chart.Spec, error) {
		return c.Stats.LeagueComparison(ctx)
	}),
		ArtifactRequest{Kind: ArtifactStatsComparison},
	)
}

func (c Catalog) renderChart(build func(ctx context.Context, params map[string]string) (chart.Spec, error)) BuilderFunc {
	return func(ctx context.Context, params map[string]string) (chart.Artifact, error) {
		spec, err := build(ctx, params)
		if err != nil {
			return chart.Artifact{}, err
		}
		return c.Renderer.Render(ctx, spec)
	}
}

func distanceParam(params map[string]string) (physical.DistanceKind, error) {
	kind, ok := physical.NormalizeDistanceKind(params["kind"])
	if !ok {
		return "", errors.Mark(fmt.Errorf("unknown distance kind %q", params["kind"]), ErrInvalidInput)
	}
	return kind, nil
}

func matchdayParam(params map[string]string) (int, error) {
	raw, ok := params["matchday"]
	if !ok || raw == "" {
		return 0, errors.Mark(fmt.Errorf("matchday is required"), ErrInvalidInput)
	}
	matchday, err := strconv.Atoi(raw)
	if err != nil || matchday < 1 {
		return 0, errors.Mark(fmt.Errorf("invalid matchday %q", raw), ErrInvalidInput)
	}
	return matchday, nil
}
