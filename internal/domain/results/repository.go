package results

import "context"

type Repository interface {
	ListResults(ctx context.Context) ([]MatchResult, error)
}
