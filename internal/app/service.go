package app

import (
	"errors"
	"math/rand"
	"time"

	"eleven/internal/config"
	"eleven/internal/domain"
)

// Service contains Eleven use-cases operating on domain state. It owns the
// rng for dealing and translates engine transitions into dispatchable events.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotPlaying    = errors.New("match not in playing phase")
	ErrNotScoring    = errors.New("match not in scoring phase")
	ErrNotYourTurn   = errors.New("not this seat's turn")
	ErrUnknownSeat   = errors.New("seat not part of this match")
	ErrTooFewPlayers = errors.New("not enough players to start")
)

// Seat describes one participant in seat order at match start.
type Seat struct {
	UserID string
	Name   string
	IsBot  bool
}

// StartMatch initializes a fresh game for the seated players and emits the
// match_started broadcast plus a private hand_dealt event per seat.
func (s *Service) StartMatch(seats []Seat, forcedDealOrder int, mode domain.GameMode) (*domain.GameState, []Event, error) {
	if len(seats) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}

	names := make([]string, len(seats))
	ids := make([]string, len(seats))
	var botSeats []int
	for i, seat := range seats {
		names[i] = seat.Name
		ids[i] = seat.UserID
		if seat.IsBot {
			botSeats = append(botSeats, i)
		}
	}

	state, err := domain.InitializeGame(s.rng, names, domain.InitOptions{
		ForcedDealOrder: forcedDealOrder,
		Mode:            mode,
		PlayerIDs:       ids,
		BotSeats:        botSeats,
	})
	if err != nil {
		return nil, nil, err
	}

	events := make([]Event, 0, len(seats)+1)
	events = append(events, Event{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			Mode:          state.GameMode,
			Round:         state.Round,
			DealOrder:     state.DealOrder,
			DealID:        state.DealID,
			FirstTurnSeat: state.ActivePlayerIndex,
			Board:         state.Board,
		},
	})
	events = append(events, handDealtEvents(state)...)

	return state, events, nil
}

// PlayCard validates turn ownership and applies the move, emitting the
// resulting events: the move itself, any broom bonus, a mid-round refill, the
// round-end breakdown, and match end once a side reaches the win threshold.
func (s *Service) PlayCard(state *domain.GameState, seatIndex int, handCardID string, captureCardIDs []string) (*domain.GameState, []Event, error) {
	if state.Phase != domain.PhasePlaying {
		return nil, nil, ErrNotPlaying
	}
	if seatIndex < 0 || seatIndex >= len(state.Players) {
		return nil, nil, ErrUnknownSeat
	}
	if seatIndex != state.ActivePlayerIndex {
		return nil, nil, ErrNotYourTurn
	}

	prevRound := state.Round
	card, _ := domain.FindByID(state.Players[seatIndex].Hand, handCardID)

	next, err := domain.ExecuteMove(state, handCardID, captureCardIDs)
	if err != nil {
		return nil, nil, err
	}

	var captured []domain.Card
	for _, id := range captureCardIDs {
		if c, ok := domain.FindByID(next.Players[seatIndex].CapturedCards, id); ok {
			captured = append(captured, c)
		}
	}

	events := []Event{{
		Kind: EventMovePlayed,
		Payload: MovePlayedPayload{
			Seat:         seatIndex,
			Card:         card,
			Captured:     captured,
			Trailed:      len(captureCardIDs) == 0,
			NextTurnSeat: next.ActivePlayerIndex,
			Board:        next.Board,
		},
	}}

	if ev := next.LastBonusEvent; ev != nil {
		events = append(events, Event{
			Kind: EventScopaScored,
			Payload: ScopaScoredPayload{
				Seat:      next.ActiveScopaPlayerIndex,
				PlayerID:  ev.PlayerID,
				Timestamp: ev.Timestamp,
			},
		})
	}

	if next.Round > prevRound {
		events = append(events, Event{
			Kind:    EventCardsDealt,
			Payload: CardsDealtPayload{Round: next.Round, DealID: next.DealID},
		})
		events = append(events, handDealtEvents(next)...)
	}

	if next.Phase == domain.PhaseScoring {
		sides := sideScores(next)
		events = append(events, Event{
			Kind:    EventRoundEnded,
			Payload: RoundEndedPayload{Round: next.Round, Sides: sides},
		})

		if winner, won := matchWinner(next); won {
			next = domain.FinishGame(next)
			events = append(events, Event{
				Kind:    EventMatchEnded,
				Payload: MatchEndedPayload{WinnerIndex: winner, Sides: sides},
			})
		}
	}

	return next, events, nil
}

// NextRound rotates the deal and starts the following round after scoring.
func (s *Service) NextRound(state *domain.GameState) (*domain.GameState, []Event, error) {
	if state.Phase != domain.PhaseScoring {
		return nil, nil, ErrNotScoring
	}

	next, err := domain.StartNextRound(s.rng, state)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:         next.Round,
			DealOrder:     next.DealOrder,
			DealID:        next.DealID,
			FirstTurnSeat: next.ActivePlayerIndex,
			Board:         next.Board,
		},
	}}
	events = append(events, handDealtEvents(next)...)

	return next, events, nil
}

func handDealtEvents(state *domain.GameState) []Event {
	events := make([]Event, 0, len(state.Players))
	for i := range state.Players {
		p := &state.Players[i]
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: p.ID, Seat: i, Hand: p.Hand},
			Recipients: []string{p.ID},
		})
	}
	return events
}

// sideScores snapshots the round breakdown and cumulative score per scoring
// side: seats in 1v1, teams in 2v2.
func sideScores(state *domain.GameState) []SideScore {
	var sides []SideScore
	if state.GameMode == domain.Mode2v2 {
		for i := range state.Teams {
			t := &state.Teams[i]
			sides = append(sides, SideScore{
				Index:     t.TeamIndex,
				Breakdown: domain.ScoreTeam(t),
				Score:     t.Score,
			})
		}
	} else {
		for i := range state.Players {
			p := &state.Players[i]
			sides = append(sides, SideScore{
				Index:     i,
				Breakdown: domain.ScorePlayer(p),
				Score:     p.Score,
			})
		}
	}
	return sides
}

// matchWinner reports the side index that reached the win threshold, picking
// the higher total when both crossed it in the same round.
func matchWinner(state *domain.GameState) (int, bool) {
	threshold := config.WinScore(len(state.Players))
	winner, best, won := -1, 0, false
	if state.GameMode == domain.Mode2v2 {
		for i := range state.Teams {
			if state.Teams[i].Score >= threshold && state.Teams[i].Score > best {
				winner, best, won = i, state.Teams[i].Score, true
			}
		}
	} else {
		for i := range state.Players {
			if state.Players[i].Score >= threshold && state.Players[i].Score > best {
				winner, best, won = i, state.Players[i].Score, true
			}
		}
	}
	return winner, won
}
