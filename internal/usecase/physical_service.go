package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/results"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// MatchSummary identifies one played match for listing endpoints. Result
// is the sporting outcome (W, D or L) when the results sheet covers the
// matchday.
type MatchSummary struct {
	Matchday int    `json:"matchday"`
	Match    string `json:"match"`
	Date     string `json:"date,omitempty"`
	Result   string `json:"result,omitempty"`
}

// PhysicalService aggregates GPS match load into chart specs. All
// operations are deterministic: equal inputs yield identical specs,
// including series order.
type PhysicalService struct {
	matches physical.MatchRepository
	results results.Repository
	logger  *logging.Logger
}

func NewPhysicalService(matches physical.MatchRepository, results results.Repository, logger *logging.Logger) *PhysicalService {
	return &PhysicalService{matches: matches, results: results, logger: logger}
}

var distanceTitles = map[physical.DistanceKind]string{
	physical.DistanceTotal:  "Distancia total (m)",
	physical.DistanceHSR:    "Distancia alta velocidad (m)",
	physical.DistanceSprint: "Distancia sprint (m)",
}

// CollectiveBars returns the per-match squad average of one distance
// metric as a bar chart, ordered by matchday, with the season mean line.
func (s *PhysicalService) CollectiveBars(ctx context.Context, kind physical.DistanceKind) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PhysicalService.CollectiveBars")
	defer span.End()

	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	type bucket struct {
		match    string
		matchday int
		sum      float64
		n        int
	}
	byMatch := map[string]*bucket{}
	for _, r := range records {
		b, ok := byMatch[r.Match]
		if !ok {
			b = &bucket{match: r.Match, matchday: r.Matchday}
			byMatch[r.Match] = b
		}
		b.sum += r.Distance(kind)
		b.n++
	}

	buckets := make([]*bucket, 0, len(byMatch))
	for _, b := range byMatch {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].matchday != buckets[j].matchday {
			return buckets[i].matchday < buckets[j].matchday
		}
		return buckets[i].match < buckets[j].match
	})

	values := make([]chart.Value, 0, len(buckets))
	var total float64
	for _, b := range buckets {
		avg := b.sum / float64(b.n)
		total += avg
		values = append(values, chart.Value{Label: b.match, Value: avg, Role: chart.RoleHighlight})
	}

	spec := chart.Spec{
		Kind:   chart.KindBar,
		Title:  "Carga colectiva por partido — " + distanceTitles[kind],
		YLabel: distanceTitles[kind],
		Series: []chart.Series{{Name: "Equipo", Role: chart.RoleHighlight, Values: values}},
	}
	if len(values) > 0 {
		spec.YMean = total / float64(len(values))
		spec.ShowMeans = true
	}

	return spec, nil
}

// IndividualBars returns per-player season averages of one distance
// metric, top fifteen players in descending order, as a horizontal bar
// chart.
func (s *PhysicalService) IndividualBars(ctx context.Context, kind physical.DistanceKind) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PhysicalService.IndividualBars")
	defer span.End()

	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	type bucket struct {
		player string
		sum    float64
		n      int
	}
	byPlayer := map[string]*bucket{}
	for _, r := range records {
		b, ok := byPlayer[r.Player]
		if !ok {
			b = &bucket{player: r.Player}
			byPlayer[r.Player] = b
		}
		b.sum += r.Distance(kind)
		b.n++
	}

	buckets := make([]*bucket, 0, len(byPlayer))
	for _, b := range byPlayer {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		ai, aj := buckets[i].sum/float64(buckets[i].n), buckets[j].sum/float64(buckets[j].n)
		if ai != aj {
			return ai > aj
		}
		return buckets[i].player < buckets[j].player
	})
	if len(buckets) > 15 {
		buckets = buckets[:15]
	}

	values := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		values = append(values, chart.Value{
			Label: b.player,
			Value: b.sum / float64(b.n),
			Role:  chart.RoleHighlight,
		})
	}

	return chart.Spec{
		Kind:   chart.KindHBar,
		Title:  "Carga individual media — " + distanceTitles[kind],
		XLabel: distanceTitles[kind],
		Series: []chart.Series{{Name: "Jugadores", Role: chart.RoleHighlight, Values: values}},
	}, nil
}

// Evolution returns the per-matchday squad averages of the three distance
// metrics as a multi-series line chart.
func (s *PhysicalService) Evolution(ctx context.Context) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PhysicalService.Evolution")
	defer span.End()

	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	type bucket struct {
		matchday int
		match    string
		total    float64
		hsr      float64
		sprint   float64
		n        int
	}
	byDay := map[int]*bucket{}
	for _, r := range records {
		b, ok := byDay[r.Matchday]
		if !ok {
			b = &bucket{matchday: r.Matchday, match: r.Match}
			byDay[r.Matchday] = b
		}
		b.total += r.TotalDistance
		b.hsr += r.HSRDistance
		b.sprint += r.SprintDistance
		b.n++
	}

	buckets := make([]*bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].matchday < buckets[j].matchday })

	totalPts := make([]chart.Point, 0, len(buckets))
	hsrPts := make([]chart.Point, 0, len(buckets))
	sprintPts := make([]chart.Point, 0, len(buckets))
	for _, b := range buckets {
		x := float64(b.matchday)
		n := float64(b.n)
		totalPts = append(totalPts, chart.Point{Label: b.match, X: x, Y: b.total / n, Role: chart.RoleHighlight})
		hsrPts = append(hsrPts, chart.Point{Label: b.match, X: x, Y: b.hsr / n, Role: chart.RoleHighlight})
		sprintPts = append(sprintPts, chart.Point{Label: b.match, X: x, Y: b.sprint / n, Role: chart.RoleHighlight})
	}

	return chart.Spec{
		Kind:   chart.KindLine,
		Title:  "Evolución de la carga por jornada",
		XLabel: "Jornada",
		YLabel: "Distancia media (m)",
		Series: []chart.Series{
			{Name: distanceTitles[physical.DistanceTotal], Role: chart.RoleHighlight, Points: totalPts},
			{Name: distanceTitles[physical.DistanceHSR], Role: chart.RoleAverage, Points: hsrPts},
			{Name: distanceTitles[physical.DistanceSprint], Role: chart.RolePeer, Points: sprintPts},
		},
	}, nil
}

// MatchList returns the distinct played matches, newest first.
func (s *PhysicalService) MatchList(ctx context.Context) ([]MatchSummary, error) {
	ctx, span := startSpan(ctx, "PhysicalService.MatchList")
	defer span.End()

	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrDataUnavailable)
	}

	seen := map[string]MatchSummary{}
	for _, r := range records {
		if _, ok := seen[r.Match]; ok {
			continue
		}
		summary := MatchSummary{Matchday: r.Matchday, Match: r.Match}
		if !r.Date.IsZero() {
			summary.Date = r.Date.Format("2006-01-02")
		}
		seen[r.Match] = summary
	}

	labels := s.resultLabels(ctx)

	out := make([]MatchSummary, 0, len(seen))
	for _, summary := range seen {
		summary.Result = labels[summary.Matchday]
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matchday != out[j].Matchday {
			return out[i].Matchday > out[j].Matchday
		}
		return out[i].Match < out[j].Match
	})

	return out, nil
}

// resultLabels maps matchdays to W/D/L outcomes. A missing or broken
// results sheet only drops the labels, it never fails the listing.
func (s *PhysicalService) resultLabels(ctx context.Context) map[int]string {
	if s.results == nil {
		return nil
	}

	list, err := s.results.ListResults(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "results unavailable for match listing", "error", err)
		return nil
	}

	labels := make(map[int]string, len(list))
	for _, r := range list {
		labels[r.Matchday] = r.Label()
	}

	return labels
}

// IndividualScatter returns per-player total distance against high speed
// distance for one match, with axis means. An empty match selects the
// latest one.
func (s *PhysicalService) IndividualScatter(ctx context.Context, match string) (chart.Spec, error) {
	ctx, span := startSpan(ctx, "PhysicalService.IndividualScatter")
	defer span.End()

	records, err := s.matches.ListMatchRecords(ctx)
	if err != nil {
		return chart.Spec{}, errors.Mark(err, ErrDataUnavailable)
	}

	if match == "" {
		latest := -1
		for _, r := range records {
			if r.Matchday > latest {
				latest = r.Matchday
				match = r.Match
			}
		}
	}

	var selected []physical.MatchRecord
	for _, r := range records {
		if r.Match == match {
			selected = append(selected, r)
		}
	}
	if len(records) > 0 && len(selected) == 0 {
		return chart.Spec{}, errors.Mark(fmt.Errorf("match %q has no records", match), ErrNotFound)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Player < selected[j].Player })

	points := make([]chart.Point, 0, len(selected))
	var sumX, sumY float64
	for _, r := range selected {
		points = append(points, chart.Point{Label: r.Player, X: r.TotalDistance, Y: r.HSRDistance, Role: chart.RoleHighlight})
		sumX += r.TotalDistance
		sumY += r.HSRDistance
	}

	spec := chart.Spec{
		Kind:   chart.KindScatter,
		Title:  "Carga individual — " + match,
		XLabel: "Distancia total (m)",
		YLabel: "Distancia alta velocidad (m)",
		Series: []chart.Series{{Name: match, Role: chart.RoleHighlight, Points: points}},
	}
	if len(points) > 0 {
		spec.XMean = sumX / float64(len(points))
		spec.YMean = sumY / float64(len(points))
		spec.ShowMeans = true
	}

	return spec, nil
}
