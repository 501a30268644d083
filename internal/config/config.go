package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds tunables for match pacing and scoring thresholds.
type GameConfig struct {
	// WinScore1v1 and WinScore2v2 are the cumulative totals that end a match.
	WinScore1v1 int `json:"win_score_1v1"`
	WinScore2v2 int `json:"win_score_2v2"`

	TurnDurationSeconds int `json:"turn_duration_seconds"`

	// Bot pacing: how long a bot waits before acting, and how long a solo
	// human lobby waits before being filled with bots.
	BotMinDelaySeconds      int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int `json:"bot_max_delay_seconds"`
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil if not loaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// WinScore returns the match-winning threshold for a player count, falling
// back to the standard 62/124 when no config is loaded.
func WinScore(playerCount int) int {
	if cfg != nil {
		if playerCount == 4 && cfg.WinScore2v2 > 0 {
			return cfg.WinScore2v2
		}
		if playerCount != 4 && cfg.WinScore1v1 > 0 {
			return cfg.WinScore1v1
		}
	}
	if playerCount == 4 {
		return 124
	}
	return 62
}

// BotDelays returns (min, max, autoFill) bot pacing in seconds with safe
// defaults.
func BotDelays() (int, int, int) {
	minDelay, maxDelay, autoFill := 1, 3, 5
	if cfg != nil {
		if cfg.BotMinDelaySeconds > 0 {
			minDelay = cfg.BotMinDelaySeconds
		}
		if cfg.BotMaxDelaySeconds > 0 {
			maxDelay = cfg.BotMaxDelaySeconds
		}
		if cfg.BotAutoFillDelaySeconds > 0 {
			autoFill = cfg.BotAutoFillDelaySeconds
		}
	}
	return minDelay, maxDelay, autoFill
}
