package bot

import (
	"errors"
	"math/rand"

	botinternal "eleven/internal/bot/internal"
	"eleven/internal/domain"
)

var errNoHand = errors.New("bot has no cards to play")

// GreedyBrain plays the single highest-scoring option across every hand card
// and every legal capture, single-ply with no lookahead.
type GreedyBrain struct{}

func (b *GreedyBrain) CalculateMove(state *domain.GameState, playerIndex int) (Move, error) {
	player := &state.Players[playerIndex]
	if len(player.Hand) == 0 {
		return Move{}, errNoHand
	}

	options := botinternal.EnumerateOptions(player.Hand, state.Board)

	best := -1
	bestScore := 0.0
	for i, opt := range options {
		score := botinternal.ScoreOption(opt, len(state.Board), DefaultTuning)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		// Unreachable with a non-empty hand; trail the first card anyway.
		return Move{HandCardID: player.Hand[0].ID}, nil
	}
	return toMove(options[best]), nil
}

// RandomBrain picks uniformly among the available options. Used for the
// easiest difficulty tier.
type RandomBrain struct {
	rng *rand.Rand
}

func (b *RandomBrain) CalculateMove(state *domain.GameState, playerIndex int) (Move, error) {
	player := &state.Players[playerIndex]
	if len(player.Hand) == 0 {
		return Move{}, errNoHand
	}

	options := botinternal.EnumerateOptions(player.Hand, state.Board)
	if len(options) == 0 {
		return Move{HandCardID: player.Hand[0].ID}, nil
	}
	return toMove(options[b.rng.Intn(len(options))]), nil
}

func toMove(opt botinternal.Option) Move {
	move := Move{HandCardID: opt.HandCard.ID}
	for _, c := range opt.Capture {
		move.CaptureCardIDs = append(move.CaptureCardIDs, c.ID)
	}
	return move
}
