package ports

import "context"

// MatchResult is one player's outcome for a finished match.
type MatchResult struct {
	UserID string
	Name   string
	Won    bool
	Score  int
}

// StatsPort records finished-match outcomes on the host platform.
type StatsPort interface {
	// RecordResults reports every participant's result for one match.
	RecordResults(ctx context.Context, results []MatchResult) error
}
