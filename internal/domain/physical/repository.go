package physical

import "context"

// MatchRepository loads the full match GPS record set. Implementations
// return either the complete set or an error, never a partial load.
type MatchRepository interface {
	ListMatchRecords(ctx context.Context) ([]MatchRecord, error)
}

// TrainingRepository loads the full training GPS record set.
type TrainingRepository interface {
	ListTrainingRecords(ctx context.Context) ([]TrainingRecord, error)
}
