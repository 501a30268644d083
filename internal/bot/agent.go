package bot

import (
	"errors"
	"math/rand"

	"eleven/internal/domain"
)

var errNotSeated = errors.New("agent is not seated in this game")

// Agent represents an autonomous bot player bound to a strategy.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a roster bot id, choosing the brain from the
// identity's configured difficulty.
func NewAgent(botID string, rng *rand.Rand) (*Agent, error) {
	identity, _ := GetBotConfig(botID)
	brain, err := NewBrain(ParseLevel(identity.Difficulty), rng)
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = botID
	}
	return &Agent{ID: botID, Name: name, Strategy: brain}, nil
}

// Play asks the agent for a move from the seat matching its player id.
func (a *Agent) Play(state *domain.GameState) (Move, error) {
	for i := range state.Players {
		if state.Players[i].ID == a.ID {
			return a.Strategy.CalculateMove(state, i)
		}
	}
	return Move{}, errNotSeated
}

// PlayAtSeat asks the agent for a move at an explicit seat index.
func (a *Agent) PlayAtSeat(state *domain.GameState, seat int) (Move, error) {
	return a.Strategy.CalculateMove(state, seat)
}
