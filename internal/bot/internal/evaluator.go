package internal

import (
	"eleven/internal/domain"
)

// Weights tune the single-ply move evaluation. Higher scores are preferred;
// trail penalties keep valuable cards off the board.
type Weights struct {
	CaptureBase      float64
	BoardClear       float64
	BigCasino        float64 // per 10 of diamonds among played+captured
	TwoOfSpades      float64 // per 2 of spades among played+captured
	Ace              float64 // per ace among played+captured
	Spade            float64 // per spade among played+captured
	PerCard          float64 // per card captured
	TrailBigCasino   float64
	TrailTwoOfSpades float64
	TrailAce         float64
}

// ScoreOption evaluates an option against the current board. Captures score
// from the cards claimed; trails score from what the card gives away.
func ScoreOption(opt Option, boardSize int, w Weights) float64 {
	if opt.Capture == nil {
		return scoreTrail(opt.HandCard, w)
	}
	return scoreCapture(opt, boardSize, w)
}

func scoreCapture(opt Option, boardSize int, w Weights) float64 {
	score := w.CaptureBase
	if len(opt.Capture) == boardSize {
		score += w.BoardClear
	}

	claimed := append([]domain.Card{opt.HandCard}, opt.Capture...)
	for _, c := range claimed {
		if isBigCasino(c) {
			score += w.BigCasino
		}
		if isTwoOfSpades(c) {
			score += w.TwoOfSpades
		}
		if c.Rank == domain.RankAce {
			score += w.Ace
		}
		if c.Suit == domain.SuitSpades {
			score += w.Spade
		}
	}

	score += float64(len(opt.Capture)) * w.PerCard
	return score
}

func scoreTrail(card domain.Card, w Weights) float64 {
	switch {
	case isBigCasino(card):
		return w.TrailBigCasino
	case isTwoOfSpades(card):
		return w.TrailTwoOfSpades
	case card.Rank == domain.RankAce:
		return w.TrailAce
	}
	return 0
}

func isBigCasino(c domain.Card) bool {
	return c.Suit == domain.SuitDiamonds && c.Value == 10
}

func isTwoOfSpades(c domain.Card) bool {
	return c.Suit == domain.SuitSpades && c.Value == 2
}
