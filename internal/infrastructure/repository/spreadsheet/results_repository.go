package spreadsheet

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/results"
)

const (
	colOpponent     = "Rival"
	colGoalsFor     = "Goles a favor"
	colGoalsAgainst = "Goles en contra"
)

// ResultsRepository reads the season results workbook.
type ResultsRepository struct {
	path string
}

func NewResultsRepository(path string) *ResultsRepository {
	return &ResultsRepository{path: path}
}

func (r *ResultsRepository) ListResults(ctx context.Context) ([]results.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := readSheet(r.path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []results.MatchResult{}, nil
	}

	index, err := headerIndex(rows[0], []string{colMatchday, colOpponent, colGoalsFor, colGoalsAgainst})
	if err != nil {
		return nil, errors.Wrapf(err, "workbook %s", r.path)
	}

	out := make([]results.MatchResult, 0, len(rows)-1)
	for i, row := range rows[1:] {
		opponent := cell(row, index, colOpponent)
		if opponent == "" {
			continue
		}

		result := results.MatchResult{Opponent: opponent}

		if result.Matchday, err = parseMatchday(cell(row, index, colMatchday)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}

		goalsFor, err := parseRequiredNumber(cell(row, index, colGoalsFor))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		goalsAgainst, err := parseRequiredNumber(cell(row, index, colGoalsAgainst))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		result.GoalsFor = int(goalsFor)
		result.GoalsAgainst = int(goalsAgainst)

		out = append(out, result)
	}

	return out, nil
}
