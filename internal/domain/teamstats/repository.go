package teamstats

import "context"

// Repository loads the league averages table, one row per team, with the
// competition-wide summary row already filtered out.
type Repository interface {
	ListTeamAverages(ctx context.Context) ([]TeamAverages, error)
}
