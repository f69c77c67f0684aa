package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testTrainingRecords() []physical.TrainingRecord {
	return []physical.TrainingRecord{
		{Player: "Ana", Matchday: 2, Session: "MD-3", Date: day(3), TotalDistance: 5000, HSRDistance: 200},
		{Player: "Bea", Matchday: 2, Session: "MD-3", Date: day(3), TotalDistance: 4600, HSRDistance: 180},
		{Player: "Ana", Matchday: 2, Session: "MD-1", Date: day(5), TotalDistance: 3000, HSRDistance: 90},
		{Player: "Bea", Matchday: 2, Session: "MD-1", Date: day(5), TotalDistance: 2800, HSRDistance: 80},
		{Player: "Ana", Matchday: 3, Session: "MD-2", Date: day(10), TotalDistance: 4000, HSRDistance: 150},
	}
}

func newMicrocycleService(training []physical.TrainingRecord, matches []physical.MatchRecord) *MicrocycleService {
	return NewMicrocycleService(
		&stubTrainingRepo{records: training},
		&stubMatchRepo{records: matches},
		logging.NewNop(),
	)
}

func TestMicrocycleService_List(t *testing.T) {
	svc := newMicrocycleService(testTrainingRecords(), nil)

	cycles, err := svc.List(context.Background())
	require.NoError(t, err)

	require.Len(t, cycles, 2)
	assert.Equal(t, 3, cycles[0].Matchday)
	assert.Equal(t, 1, cycles[0].Sessions)
	assert.Equal(t, 2, cycles[1].Matchday)
	assert.Equal(t, 2, cycles[1].Sessions)
	assert.Equal(t, "2026-03-03", cycles[1].From)
	assert.Equal(t, "2026-03-05", cycles[1].To)
}

func TestMicrocycleService_TeamLoad(t *testing.T) {
	matches := []physical.MatchRecord{
		{Player: "Ana", Match: "J1 vs Norte", Matchday: 1, TotalDistance: 10000},
		{Player: "Bea", Match: "J1 vs Norte", Matchday: 1, TotalDistance: 9000},
	}
	svc := newMicrocycleService(testTrainingRecords(), matches)

	spec, err := svc.TeamLoad(context.Background(), 2, physical.DistanceTotal)
	require.NoError(t, err)

	require.Len(t, spec.Series, 1)
	values := spec.Series[0].Values
	require.Len(t, values, 3)

	assert.Equal(t, "MD-3", values[0].Label)
	assert.InDelta(t, 4800, values[0].Value, 0.001)
	assert.Equal(t, "MD-1", values[1].Label)
	assert.InDelta(t, 2900, values[1].Value, 0.001)

	assert.Equal(t, "Partido anterior", values[2].Label)
	assert.InDelta(t, 9500, values[2].Value, 0.001)
}

func TestMicrocycleService_TeamLoad_NoPreviousMatch(t *testing.T) {
	svc := newMicrocycleService(testTrainingRecords(), nil)

	spec, err := svc.TeamLoad(context.Background(), 3, physical.DistanceTotal)
	require.NoError(t, err)

	values := spec.Series[0].Values
	require.Len(t, values, 1)
	assert.Equal(t, "MD-2", values[0].Label)
}

func TestMicrocycleService_TeamLoad_Invalid(t *testing.T) {
	svc := newMicrocycleService(testTrainingRecords(), nil)
	ctx := context.Background()

	_, err := svc.TeamLoad(ctx, 0, physical.DistanceTotal)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.TeamLoad(ctx, 9, physical.DistanceTotal)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMicrocycleService_List_Empty(t *testing.T) {
	svc := newMicrocycleService(nil, nil)

	cycles, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cycles)
}
