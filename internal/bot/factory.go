package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// BotLevel selects a strategy tier.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelStandard
)

// ParseLevel maps a roster difficulty string to a level, defaulting to
// standard.
func ParseLevel(difficulty string) BotLevel {
	if difficulty == "easy" {
		return BotLevelEasy
	}
	return BotLevelStandard
}

// NewBrain creates a bot brain for the given level. rng may be nil to use a
// time-seeded default; it is only consumed by randomized strategies.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelEasy:
		return &RandomBrain{rng: rng}, nil
	case BotLevelStandard:
		return &GreedyBrain{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
