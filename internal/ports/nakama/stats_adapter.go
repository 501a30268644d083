package nakama

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"

	"eleven/internal/ports"
)

// NakamaStatsAdapter reports match outcomes onto a Nakama leaderboard.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter constructs the adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// RecordResults writes one increment per winning player. Losses are not
// penalized; the board tracks wins only.
func (a *NakamaStatsAdapter) RecordResults(ctx context.Context, results []ports.MatchResult) error {
	for _, res := range results {
		if !res.Won {
			continue
		}
		metadata := map[string]interface{}{
			"final_score": res.Score,
		}
		if _, err := a.nk.LeaderboardRecordWrite(ctx, LeaderboardWins, res.UserID, res.Name, 1, 0, metadata, nil); err != nil {
			return err
		}
	}
	return nil
}
