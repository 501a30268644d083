package bot

import (
	"eleven/internal/domain"
)

// Move represents the decision made by a bot: the hand card to play and the
// capture set to take, empty for a trail.
type Move struct {
	HandCardID     string
	CaptureCardIDs []string
}

// Brain is the interface all bot strategies implement. CalculateMove must be
// a pure read of the state snapshot.
type Brain interface {
	CalculateMove(state *domain.GameState, playerIndex int) (Move, error)
}
