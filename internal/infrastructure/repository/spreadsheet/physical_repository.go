package spreadsheet

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
)

const (
	colPlayer   = "Jugador"
	colMatch    = "Partido"
	colMatchday = "Jornada"
	colSession  = "Sesión"
	colDate     = "Fecha"
	colMinutes  = "Minutos"
	colTotal    = "Distancia total"
	colHSR      = "Distancia alta velocidad"
	colSprint   = "Distancia sprint"
	colTopSpeed = "Velocidad máxima"
)

// MatchRepository reads the per-player match GPS workbook.
type MatchRepository struct {
	path string
}

func NewMatchRepository(path string) *MatchRepository {
	return &MatchRepository{path: path}
}

func (r *MatchRepository) ListMatchRecords(ctx context.Context) ([]physical.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := readSheet(r.path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []physical.MatchRecord{}, nil
	}

	index, err := headerIndex(rows[0], []string{colPlayer, colMatch, colMatchday, colMinutes, colTotal, colHSR, colSprint})
	if err != nil {
		return nil, errors.Wrapf(err, "workbook %s", r.path)
	}

	out := make([]physical.MatchRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		player := cell(row, index, colPlayer)
		if player == "" {
			continue
		}

		record := physical.MatchRecord{
			Player: player,
			Match:  cell(row, index, colMatch),
		}

		if record.Matchday, err = parseMatchday(cell(row, index, colMatchday)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.Date, err = parseDate(cell(row, index, colDate)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.MinutesPlayed, err = parseRequiredNumber(cell(row, index, colMinutes)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.TotalDistance, err = parseRequiredNumber(cell(row, index, colTotal)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.HSRDistance, err = parseRequiredNumber(cell(row, index, colHSR)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.SprintDistance, err = parseRequiredNumber(cell(row, index, colSprint)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if speed, ok, err := parseNumber(cell(row, index, colTopSpeed)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		} else if ok {
			record.TopSpeed = speed
		}

		out = append(out, record)
	}

	return out, nil
}

// TrainingRepository reads the per-player training GPS workbook.
type TrainingRepository struct {
	path string
}

func NewTrainingRepository(path string) *TrainingRepository {
	return &TrainingRepository{path: path}
}

func (r *TrainingRepository) ListTrainingRecords(ctx context.Context) ([]physical.TrainingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := readSheet(r.path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []physical.TrainingRecord{}, nil
	}

	index, err := headerIndex(rows[0], []string{colPlayer, colMatchday, colSession, colMinutes, colTotal, colHSR, colSprint})
	if err != nil {
		return nil, errors.Wrapf(err, "workbook %s", r.path)
	}

	out := make([]physical.TrainingRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		player := cell(row, index, colPlayer)
		if player == "" {
			continue
		}

		record := physical.TrainingRecord{
			Player:  player,
			Session: cell(row, index, colSession),
		}

		if record.Matchday, err = parseMatchday(cell(row, index, colMatchday)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.Date, err = parseDate(cell(row, index, colDate)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.MinutesPlayed, err = parseRequiredNumber(cell(row, index, colMinutes)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.TotalDistance, err = parseRequiredNumber(cell(row, index, colTotal)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.HSRDistance, err = parseRequiredNumber(cell(row, index, colHSR)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}
		if record.SprintDistance, err = parseRequiredNumber(cell(row, index, colSprint)); err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+2, r.path)
		}

		out = append(out, record)
	}

	return out, nil
}
