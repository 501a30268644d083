package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"eleven/internal/app"
	"eleven/internal/bot"
	"eleven/internal/domain"
)

// maxMovesPerMatch caps a match to catch a stuck state machine.
const maxMovesPerMatch = 10000

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	matches := flag.Int("matches", 100, "number of matches to simulate")
	mode := flag.String("mode", "1v1", "game mode: 1v1 or 2v2")
	seed := flag.Int64("seed", 1, "rng seed")
	easySeats := flag.Int("easy-seats", 0, "number of seats driven by the easy (random) bot")
	flag.Parse()

	gameMode := domain.Mode1v1
	seatCount := 2
	if *mode == string(domain.Mode2v2) {
		gameMode = domain.Mode2v2
		seatCount = 4
	}

	rng := rand.New(rand.NewSource(*seed))
	svc := app.NewService(rng)

	brains := make([]bot.Brain, seatCount)
	for i := range brains {
		level := bot.BotLevelStandard
		if i < *easySeats {
			level = bot.BotLevelEasy
		}
		brain, err := bot.NewBrain(level, rng)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create bot brain")
		}
		brains[i] = brain
	}

	log.Info().Int("matches", *matches).Str("mode", string(gameMode)).Int64("seed", *seed).Msg("starting simulation")

	wins := make(map[int]int)
	for m := 0; m < *matches; m++ {
		winner, rounds, err := runMatch(svc, brains, gameMode, seatCount)
		if err != nil {
			log.Fatal().Err(err).Int("match", m).Msg("simulation aborted")
		}
		wins[winner]++
		log.Debug().Int("match", m).Int("winner", winner).Int("rounds", rounds).Msg("match finished")
	}

	for side, count := range wins {
		log.Info().
			Int("side", side).
			Int("wins", count).
			Float64("win_rate", float64(count)/float64(*matches)).
			Msg("result")
	}
}

// runMatch plays one full match of bot self-play and returns the winning
// side index and the number of rounds played.
func runMatch(svc *app.Service, brains []bot.Brain, mode domain.GameMode, seatCount int) (int, int, error) {
	seats := make([]app.Seat, seatCount)
	for i := range seats {
		seats[i] = app.Seat{
			UserID: fmt.Sprintf("sim-bot-%d", i+1),
			Name:   fmt.Sprintf("Bot %d", i+1),
			IsBot:  true,
		}
	}

	state, _, err := svc.StartMatch(seats, -1, mode)
	if err != nil {
		return -1, 0, err
	}

	for moves := 0; moves < maxMovesPerMatch; moves++ {
		switch state.Phase {
		case domain.PhasePlaying:
			seat := state.ActivePlayerIndex
			move, err := brains[seat].CalculateMove(state, seat)
			if err != nil {
				return -1, 0, fmt.Errorf("seat %d: %w", seat, err)
			}

			next, events, err := svc.PlayCard(state, seat, move.HandCardID, move.CaptureCardIDs)
			if err != nil {
				return -1, 0, fmt.Errorf("seat %d move rejected: %w", seat, err)
			}
			if got := next.CardsInPlay(); got != domain.DeckSize {
				return -1, 0, fmt.Errorf("card conservation violated: %d cards in play", got)
			}
			state = next

			for _, ev := range events {
				if ev.Kind == app.EventMatchEnded {
					payload := ev.Payload.(app.MatchEndedPayload)
					return payload.WinnerIndex, state.Round, nil
				}
			}

		case domain.PhaseScoring:
			next, _, err := svc.NextRound(state)
			if err != nil {
				return -1, 0, err
			}
			state = next

		default:
			return -1, 0, fmt.Errorf("unexpected phase %s", state.Phase)
		}
	}
	return -1, 0, fmt.Errorf("match did not finish within %d moves", maxMovesPerMatch)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
