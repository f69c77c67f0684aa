package usecase

import (
	"context"
	"sync/atomic"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/results"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
)

type stubResultsRepo struct {
	list []results.MatchResult
	err  error
}

func (s *stubResultsRepo) ListResults(context.Context) ([]results.MatchResult, error) {
	return s.list, s.err
}

type stubMatchRepo struct {
	records []physical.MatchRecord
	err     error
}

func (s *stubMatchRepo) ListMatchRecords(context.Context) ([]physical.MatchRecord, error) {
	return s.records, s.err
}

type stubTrainingRepo struct {
	records []physical.TrainingRecord
	err     error
}

func (s *stubTrainingRepo) ListTrainingRecords(context.Context) ([]physical.TrainingRecord, error) {
	return s.records, s.err
}

type stubStatsRepo struct {
	averages []teamstats.TeamAverages
	err      error
}

func (s *stubStatsRepo) ListTeamAverages(context.Context) ([]teamstats.TeamAverages, error) {
	return s.averages, s.err
}

// stubRenderer passes the spec through as a JSON-ish artifact and counts
// renders, which is enough to observe caching behavior.
type stubRenderer struct {
	calls atomic.Int64
}

func (s *stubRenderer) Render(_ context.Context, spec chart.Spec) (chart.Artifact, error) {
	s.calls.Add(1)
	return chart.Artifact{ContentType: "image/png", Payload: []byte(spec.Title)}, nil
}
