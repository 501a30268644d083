package internal

import (
	"eleven/internal/domain"
)

// Option is one playable (card, capture set) pair. Capture nil means the card
// is trailed onto the board.
type Option struct {
	HandCard domain.Card
	Capture  []domain.Card
}

// EnumerateOptions lists every move available from the hand: all capture
// options per card, or a single trail option for cards with no capture.
func EnumerateOptions(hand, board []domain.Card) []Option {
	var options []Option
	for _, card := range hand {
		captures := domain.ValidCaptures(card, board)
		if len(captures) == 0 {
			options = append(options, Option{HandCard: card})
			continue
		}
		for _, set := range captures {
			options = append(options, Option{HandCard: card, Capture: set})
		}
	}
	return options
}
