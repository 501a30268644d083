package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// botIDPrefix marks synthetic bot ids when no roster entry backs a seat.
const botIDPrefix = "bot-"

// BotIdentity is one roster entry for a seatable bot.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy" or "standard"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	botIdentities  []BotIdentity
	botIDMap       map[string]bool
	botUsernameMap map[string]string
	botConfigMap   map[string]BotIdentity
	loadOnce       sync.Once
	provisionOnce  sync.Once
	loadErr        error
)

// LoadIdentities loads the bot roster from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		if err := json.Unmarshal(data, &botIdentities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		botIDMap = make(map[string]bool)
		botUsernameMap = make(map[string]string)
		botConfigMap = make(map[string]BotIdentity)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				mapIdentity(identity)
			}
		}
	})
	return loadErr
}

func mapIdentity(identity BotIdentity) {
	botIDMap[identity.UserID] = true
	botUsernameMap[identity.UserID] = identity.Username
	botConfigMap[identity.UserID] = identity
}

// ProvisionBots ensures bot accounts exist in Nakama and carry bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	var err error
	provisionOnce.Do(func() {
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, authErr := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if authErr != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, authErr)
				continue
			}

			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if authErr = nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); authErr != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, authErr)
			}

			mapIdentity(*identity)
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
	return err
}

// GetBotIdentity returns a roster identity for the given seat, falling back
// to a synthetic one when the roster is missing or the entry was never
// provisioned with a user id.
func GetBotIdentity(seat int) BotIdentity {
	if len(botIdentities) > 0 {
		identity := botIdentities[seat%len(botIdentities)]
		if identity.UserID != "" {
			return identity
		}
	}
	return SyntheticIdentity(seat)
}

// SyntheticIdentity builds the seat-unique fallback identity used when no
// roster entry can back a bot seat.
func SyntheticIdentity(seat int) BotIdentity {
	id := fmt.Sprintf("%s%d", botIDPrefix, seat+1)
	return BotIdentity{
		UserID:      id,
		Username:    id,
		DisplayName: fmt.Sprintf("Bot %d", seat+1),
		Difficulty:  "standard",
	}
}

// GetBotConfig returns the roster entry for a bot id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	config, ok := botConfigMap[userID]
	return config, ok
}

// GetBotUsername returns the username for a bot id, or empty if not a bot.
func GetBotUsername(userID string) string {
	if botUsernameMap == nil {
		return ""
	}
	return botUsernameMap[userID]
}

// IsBot reports whether the user id belongs to a roster bot or a synthetic
// bot seat.
func IsBot(userID string) bool {
	if botIDMap != nil && botIDMap[userID] {
		return true
	}
	return strings.HasPrefix(userID, botIDPrefix)
}
