package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

func leagueAverages() []teamstats.TeamAverages {
	return []teamstats.TeamAverages{
		{Team: "Penafiel", Metrics: map[string]float64{
			"team_xgShot": 1.4, "team_goal": 1.2, "team_shot": 11, "team_shotSuccess": 4,
			"team_possession": 48, "team_ppda": 9.5, "team_passToFinalThird": 30,
			"opp_xgShot": 1.1, "opp_goal": 0.9, "opp_shot": 10, "opp_shotSuccess": 3.5,
			"opp_passToFinalThird": 28,
		}},
		{Team: "Norte", Metrics: map[string]float64{
			"team_xgShot": 1.8, "team_goal": 1.6, "team_shot": 14, "team_shotSuccess": 5,
			"team_possession": 55, "team_ppda": 8.0, "team_passToFinalThird": 36,
			"opp_xgShot": 0.9, "opp_goal": 0.8, "opp_shot": 8, "opp_shotSuccess": 3,
			"opp_passToFinalThird": 24,
		}},
		{Team: "Sur", Metrics: map[string]float64{
			"team_xgShot": 1.0, "team_goal": 0.8, "team_shot": 9, "team_shotSuccess": 3,
			"team_possession": 44, "team_ppda": 11.0, "team_passToFinalThird": 25,
			"opp_xgShot": 1.5, "opp_goal": 1.4, "opp_shot": 12, "opp_shotSuccess": 4.5,
			"opp_passToFinalThird": 32,
		}},
	}
}

func newRankingsService(averages []teamstats.TeamAverages) *RankingsService {
	metrics := map[string]string{
		"team_goal": "Goles a favor",
		"team_ppda": "PPDA",
	}
	inverse := map[string]bool{"team_ppda": true}

	return NewRankingsService(&stubStatsRepo{averages: averages}, "Penafiel", metrics, inverse, logging.NewNop())
}

func TestRankTeams_TieBreakByName(t *testing.T) {
	ordered := rankTeams(map[string]float64{"Alpha": 5, "Beta": 5, "Gamma": 7}, false)

	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, ordered)
}

func TestRankTeams_Inverse(t *testing.T) {
	ordered := rankTeams(map[string]float64{"Alpha": 5, "Beta": 3, "Gamma": 7}, true)

	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, ordered)
}

func TestSafeDiv(t *testing.T) {
	v, ok := safeDiv(10, 4)
	require.True(t, ok)
	assert.InDelta(t, 2.5, v, 0.001)

	_, ok = safeDiv(10, 0)
	assert.False(t, ok)
}

func TestRankingsService_GlobalRanking(t *testing.T) {
	svc := newRankingsService(leagueAverages())

	entries, err := svc.GlobalRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 8)

	byKey := map[string]GlobalRankingEntry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}

	goalsFor := byKey["goals_for"]
	assert.Equal(t, 2, goalsFor.Position)
	assert.Equal(t, 3, goalsFor.Teams)
	assert.InDelta(t, 1.2, goalsFor.Value, 0.001)

	goalsAgainst := byKey["goals_against"]
	assert.True(t, goalsAgainst.Inverse)
	assert.Equal(t, 2, goalsAgainst.Position)
}

func TestRankingsService_GlobalRanking_ZeroDenominatorExcluded(t *testing.T) {
	averages := leagueAverages()
	averages[0].Metrics["team_xgShot"] = 0

	svc := newRankingsService(averages)

	entries, err := svc.GlobalRanking(context.Background())
	require.NoError(t, err)

	for _, e := range entries {
		if e.Key == "finishing_efficiency" {
			t.Fatalf("finishing efficiency should be excluded when xG is zero, got position %d", e.Position)
		}
		if e.Key == "xg_for" {
			// Ranked last, not dropped: zero is a real xG value.
			assert.Equal(t, 3, e.Position)
		}
	}
}

func TestRankingsService_MetricBoards(t *testing.T) {
	svc := newRankingsService(leagueAverages())

	boards, err := svc.MetricBoards(context.Background())
	require.NoError(t, err)
	require.Len(t, boards, 2)

	goals := boards[0]
	assert.Equal(t, "team_goal", goals.Key)
	require.Len(t, goals.Rows, 4)
	assert.Equal(t, "Norte", goals.Rows[0].Team)
	assert.Equal(t, 1, goals.Rows[0].Position)
	assert.True(t, goals.Rows[1].Highlight)

	average := goals.Rows[3]
	assert.Equal(t, LeagueAverageLabel, average.Team)
	assert.True(t, average.Average)
	assert.InDelta(t, 1.2, average.Value, 0.001)

	ppda := boards[1]
	assert.True(t, ppda.Inverse)
	assert.Equal(t, "Norte", ppda.Rows[0].Team)
	assert.Equal(t, "Sur", ppda.Rows[2].Team)
}

func TestRankingsService_EmptyLeague(t *testing.T) {
	svc := newRankingsService(nil)

	entries, err := svc.GlobalRanking(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	boards, err := svc.MetricBoards(context.Background())
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Empty(t, boards[0].Rows)
}
