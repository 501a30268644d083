package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"eleven/internal/bot"
)

// InitModule wires RPCs, the match handler and the wins leaderboard for the
// Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameEleven, NewMatch); err != nil {
		return err
	}

	if err := nk.LeaderboardCreate(ctx, LeaderboardWins, true, "desc", "incr", "", nil, true); err != nil {
		logger.Warn("InitModule: Could not create wins leaderboard: %v", err)
	}

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Could not provision bots: %v", err)
	}

	logger.Info("Eleven Go module loaded.")
	return nil
}
