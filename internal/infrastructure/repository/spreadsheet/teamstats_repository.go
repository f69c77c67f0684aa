package spreadsheet

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/teamstats"
)

const colTeam = "Equipo"

// globalAverageRow is the competition-wide summary line the provider
// appends to the averages export. It is not a team and never ranks.
const globalAverageRow = "PROMEDIO GLOBAL COMPETICIÓN"

// TeamStatsRepository reads the league averages workbook: one row per
// team, one column per raw metric key.
type TeamStatsRepository struct {
	path string
}

func NewTeamStatsRepository(path string) *TeamStatsRepository {
	return &TeamStatsRepository{path: path}
}

func (r *TeamStatsRepository) ListTeamAverages(ctx context.Context) ([]teamstats.TeamAverages, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := readSheet(r.path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []teamstats.TeamAverages{}, nil
	}

	index, err := headerIndex(rows[0], []string{colTeam})
	if err != nil {
		return nil, errors.Wrapf(err, "workbook %s", r.path)
	}

	metricColumns := make([]string, 0, len(rows[0]))
	for _, header := range rows[0] {
		name := strings.TrimSpace(header)
		if name == "" || strings.EqualFold(name, colTeam) {
			continue
		}
		metricColumns = append(metricColumns, name)
	}

	out := make([]teamstats.TeamAverages, 0, len(rows)-1)
	for i, row := range rows[1:] {
		team := cell(row, index, colTeam)
		if team == "" {
			continue
		}
		if strings.EqualFold(team, globalAverageRow) {
			continue
		}

		averages := teamstats.TeamAverages{Team: team, Metrics: map[string]float64{}}
		for _, metric := range metricColumns {
			v, ok, err := parseNumber(cell(row, index, metric))
			if err != nil {
				return nil, errors.Wrapf(err, "row %d metric %q of %s", i+2, metric, r.path)
			}
			if ok {
				averages.Metrics[metric] = v
			}
		}

		out = append(out, averages)
	}

	return out, nil
}
