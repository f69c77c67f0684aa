// Package postgres serves the match GPS data from a read replica when
// the club's tracking provider syncs into a database instead of the
// exported workbooks.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
)

const listMatchRecordsQuery = `
SELECT player, match_name AS match, matchday, played_on, minutes,
       total_distance, hsr_distance, sprint_distance, top_speed
FROM match_gps_records
ORDER BY matchday, match_name, player`

const listTrainingRecordsQuery = `
SELECT player, matchday, session, trained_on, minutes, total_distance,
       hsr_distance, sprint_distance
FROM training_gps_records
ORDER BY matchday, trained_on, player`

type matchRecordRow struct {
	Player         string          `db:"player"`
	Match          string          `db:"match"`
	Matchday       int             `db:"matchday"`
	PlayedOn       sql.NullTime    `db:"played_on"`
	Minutes        float64         `db:"minutes"`
	TotalDistance  float64         `db:"total_distance"`
	HSRDistance    float64         `db:"hsr_distance"`
	SprintDistance float64         `db:"sprint_distance"`
	TopSpeed       sql.NullFloat64 `db:"top_speed"`
}

type trainingRecordRow struct {
	Player         string       `db:"player"`
	Matchday       int          `db:"matchday"`
	Session        string       `db:"session"`
	TrainedOn      sql.NullTime `db:"trained_on"`
	Minutes        float64      `db:"minutes"`
	TotalDistance  float64      `db:"total_distance"`
	HSRDistance    float64      `db:"hsr_distance"`
	SprintDistance float64      `db:"sprint_distance"`
}

// PhysicalRepository implements both GPS repositories over postgres.
type PhysicalRepository struct {
	db *sqlx.DB
}

func NewPhysicalRepository(db *sqlx.DB) *PhysicalRepository {
	return &PhysicalRepository{db: db}
}

func (r *PhysicalRepository) ListMatchRecords(ctx context.Context) ([]physical.MatchRecord, error) {
	var rows []matchRecordRow
	if err := r.db.SelectContext(ctx, &rows, listMatchRecordsQuery); err != nil {
		return nil, errors.Wrap(err, "list match gps records")
	}

	out := make([]physical.MatchRecord, 0, len(rows))
	for _, row := range rows {
		record := physical.MatchRecord{
			Player:         row.Player,
			Match:          row.Match,
			Matchday:       row.Matchday,
			MinutesPlayed:  row.Minutes,
			TotalDistance:  row.TotalDistance,
			HSRDistance:    row.HSRDistance,
			SprintDistance: row.SprintDistance,
		}
		if row.PlayedOn.Valid {
			record.Date = row.PlayedOn.Time.UTC()
		}
		if row.TopSpeed.Valid {
			record.TopSpeed = row.TopSpeed.Float64
		}
		out = append(out, record)
	}

	return out, nil
}

func (r *PhysicalRepository) ListTrainingRecords(ctx context.Context) ([]physical.TrainingRecord, error) {
	var rows []trainingRecordRow
	if err := r.db.SelectContext(ctx, &rows, listTrainingRecordsQuery); err != nil {
		return nil, errors.Wrap(err, "list training gps records")
	}

	out := make([]physical.TrainingRecord, 0, len(rows))
	for _, row := range rows {
		record := physical.TrainingRecord{
			Player:         row.Player,
			Matchday:       row.Matchday,
			Session:        row.Session,
			MinutesPlayed:  row.Minutes,
			TotalDistance:  row.TotalDistance,
			HSRDistance:    row.HSRDistance,
			SprintDistance: row.SprintDistance,
		}
		if row.TrainedOn.Valid {
			record.Date = row.TrainedOn.Time.UTC()
		}
		out = append(out, record)
	}

	return out, nil
}

// Connect opens and pings the read replica.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	return db, nil
}
