package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"eleven/internal/domain"
)

// QuickMatchRequest selects the table size to queue for.
type QuickMatchRequest struct {
	Mode string `json:"mode"` // "1v1" (default) or "2v2"
}

// QuickMatchResponse is the payload returned to clients when requesting a
// lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	request := QuickMatchRequest{Mode: string(domain.Mode1v1)}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Warn("rpcQuickMatch: invalid payload: %v", err)
		}
	}
	if request.Mode != string(domain.Mode2v2) {
		request.Mode = string(domain.Mode1v1)
	}

	// Find any open lobby for our game and mode.
	query := "+label.open:T +label.game:eleven +label.phase:lobby +label.mode:" + request.Mode

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 3 // ensure at least one free seat

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seat/owner assignment happens in MatchJoin.
	matchID, err := nk.MatchCreate(ctx, MatchNameEleven, map[string]interface{}{"mode": request.Mode})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
