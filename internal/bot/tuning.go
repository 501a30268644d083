package bot

import botinternal "eleven/internal/bot/internal"

// DefaultTuning is the baseline greedy evaluation. Any capture beats any
// trail; board clears dominate; the bonus cards are chased when capturing
// and protected when trailing.
var DefaultTuning = botinternal.Weights{
	CaptureBase: 10,
	BoardClear:  50,
	BigCasino:   20,
	TwoOfSpades: 15,
	Ace:         5,
	Spade:       2,
	PerCard:     1,

	TrailBigCasino:   -20,
	TrailTwoOfSpades: -15,
	TrailAce:         -10,
}
