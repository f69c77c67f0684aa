package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// MicrocycleSummary identifies one training week leading into a match.
type MicrocycleSummary struct {
	Matchday int    `json:"matchday"`
	Sessions int    `json:"sessions"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// MicrocycleService aggregates training GPS load per microcycle, a
// microcycle being the training week that prepares one matchday.
type MicrocycleService struct {
	training physical.TrainingRepository
	matches  physical.MatchRepository
	logger   *logging.Logger
}

func NewMicrocycleService(training physical.TrainingRepository, matches physical.MatchRepository, logger *logging.Logger) *MicrocycleService {
	return &MicrocycleService{training: training, matches: matches, logger: logger}
}

// List returns the recorded microcycles, newest first.
func (s *MicrocycleService) List(ctx context.Context) ([]MicrocycleSummary, error) {
	ctx, span := startSpan(ctx, "MicrocycleService.List")
	defer span.End()

	records, err := s.training.ListTrainingRecords(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrDataUnavailable)
	}

	type window struct {
		sessions map[string]struct{}
		from     string
		to       string
	}
	byDay := map[int]*window{}
	for _, r := range records {
		w, ok := byDay[r.Matchday]
		if !ok {
			w = &window{sessions: map[string]struct{}{}}
			byDay[r.Matchday] = w
		}
		w.sessions[r.Session] = struct{}{}
		if !r.Date.IsZero() {
			day := r.Date.Format("2006-01-02")
			if w.from == "" || day < w.from {
				w.from = day
			}
			if day > w.to {
				w.to = day
			}
		}
	}

	out := make([]MicrocycleSummary, 0, len(byDay))
	for matchday, w := range byDay {
		out = append(out, MicrocycleSummary{
			Matchday: matchday,
			Sessions: len(w.sessions),
			From:     w.from,
			To:       w.to,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matchday > out[j].Matchday })

	return out, nil
}

// TeamLoad returns per-session squad averages of one distance metric for
// the microcycle preparing the given matchday, with the previous match's
// squad load as a reference bar.
func (s *MicrocycleService) TeamLoad(ctx context.Context, matchday int, kind physical.DistanceKind) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "MicrocycleService.TeamLoad")
	defer span.End()

	if matchday < 1 {
		return chart.Spec{}, errors.Mark(fmt.Errorf("matchday %d out of range", matchday), ErrInvalidInput)
	}

	records, err := s.training.ListTrainingRecords(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	type bucket struct {
		session string
		date    string
		sum     float64
		n       int
	}
	bySession := map[string]*bucket{}
	for _, r := range records {
		if r.Matchday != matchday {
			continue
		}
		b, ok := bySession[r.Session]
		if !ok {
			b = &bucket{session: r.Session}
			if !r.Date.IsZero() {
				b.date = r.Date.Format("2006-01-02")
			}
			bySession[r.Session] = b
		}
		b.sum += r.Distance(kind)
		b.n++
	}
	if len(bySession) == 0 {
		return chart.Spec{}, errors.Mark(fmt.Errorf("no training data for matchday %d", matchday), ErrNotFound)
	}

	buckets := make([]*bucket, 0, len(bySession))
	for _, b := range bySession {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].date != buckets[j].date {
			return buckets[i].date < buckets[j].date
		}
		return buckets[i].session < buckets[j].session
	})

	values := make([]chart.Value, 0, len(buckets)+1)
	for _, b := range buckets {
		values = append(values, chart.Value{Label: b.session, Value: b.sum / float64(b.n), Role: chart.RoleHighlight})
	}

	if ref, ok := s.previousMatchLoad(ctx, matchday, kind); ok {
		values = append(values, chart.Value{Label: "Partido anterior", Value: ref, Role: chart.RoleAverage})
	}

	return chart.Spec{
		Kind:   chart.KindBar,
		Title:  fmt.Sprintf("Microciclo jornada %d — %s", matchday, distanceTitles[kind]),
		YLabel: distanceTitles[kind],
		Series: []chart.Series{{Name: "Equipo", Role: chart.RoleHighlight, Values: values}},
	}, nil
}

// previousMatchLoad computes the squad average of the metric in the match
// right before the microcycle. Missing match data only drops the
// reference bar, it never fails the view.
func (s *MicrocycleService) previousMatchLoad(ctx context.Context, matchday int, kind physical.DistanceKind) (float64, bool) {
	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "previous match load unavailable", "matchday", matchday, "error", err)
		return 0, false
	}

	var sum float64
	var n int
	for _, r := range records {
		if r.Matchday == matchday-1 {
			sum += r.Distance(kind)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}
