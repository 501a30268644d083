package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	// HandSize is the number of cards dealt to each player per pass.
	HandSize = 4
	// BoardSize is the number of cards dealt face-up at round start.
	BoardSize = 4
	// DeckSize is the full deck: four suits, thirteen ranks. Picture cards
	// stay in the deck; their capture rules are layered on top.
	DeckSize = 52
)

var (
	// ErrCardNotInHand signals a caller bug: the submitted hand card id is
	// not held by the active player. Raised deterministically so the host
	// can guard against stale selections.
	ErrCardNotInHand = errors.New("hand card not in active player's hand")
	// ErrIllegalCapture signals a capture set that is not among the legal
	// options for the played card.
	ErrIllegalCapture = errors.New("capture set is not a legal option")
	// ErrWrongPhase signals an operation attempted outside its phase.
	ErrWrongPhase = errors.New("operation not valid in current phase")
	// ErrPlayerCount signals an unsupported table size.
	ErrPlayerCount = errors.New("player count must be 2 or 4")
)

// InitOptions tune game creation.
type InitOptions struct {
	// ForcedDealOrder fixes the seat that deals first; -1 picks randomly.
	ForcedDealOrder int
	// Mode overrides the game mode; empty infers it from player count
	// (4 players means 2v2).
	Mode GameMode
	// PlayerIDs supplies stable ids per seat; generated when empty.
	PlayerIDs []string
	// BotSeats flags which seats are driven by bots.
	BotSeats []int
}

// InitializeGame builds a fresh match: full shuffled deck, four cards to each
// player in dealer-relative order, four to the board, playing phase.
func InitializeGame(rng *rand.Rand, playerNames []string, opts InitOptions) (*GameState, error) {
	n := len(playerNames)
	if n != 2 && n != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, n)
	}

	mode := opts.Mode
	if mode == "" {
		mode = Mode1v1
		if n == 4 {
			mode = Mode2v2
		}
	}
	// A forced mode must agree with the table size: the 1v1 broom offset
	// addresses the single opponent seat and 2v2 pairs diagonal teammates.
	if (mode == Mode1v1 && n != 2) || (mode == Mode2v2 && n != 4) {
		return nil, fmt.Errorf("%w: %s with %d players", ErrPlayerCount, mode, n)
	}

	botSeats := make(map[int]bool, len(opts.BotSeats))
	for _, seat := range opts.BotSeats {
		botSeats[seat] = true
	}

	players := make([]Player, n)
	for i, name := range playerNames {
		id := uuid.NewString()
		if i < len(opts.PlayerIDs) && opts.PlayerIDs[i] != "" {
			id = opts.PlayerIDs[i]
		}
		teamIndex := -1
		if mode == Mode2v2 {
			// Alternating seats pair diagonal teammates.
			teamIndex = i % 2
		}
		players[i] = Player{
			ID:        id,
			Name:      name,
			IsBot:     botSeats[i],
			TeamIndex: teamIndex,
		}
	}

	dealOrder := opts.ForcedDealOrder
	if dealOrder < 0 || dealOrder >= n {
		dealOrder = rng.Intn(n)
	}

	deck := ShuffleDeck(rng, NewDeck())
	deck = dealCards(deck, players, HandSize, dealOrder)

	board := append([]Card{}, deck[:BoardSize]...)
	deck = deck[BoardSize:]

	state := &GameState{
		Deck:                     deck,
		Board:                    board,
		Players:                  players,
		ActivePlayerIndex:        dealOrder,
		Round:                    1,
		Phase:                    PhasePlaying,
		LastCapturingPlayerIndex: -1,
		ActiveScopaPlayerIndex:   -1,
		DealOrder:                dealOrder,
		DealID:                   uuid.NewString(),
		GameMode:                 mode,
	}

	if mode == Mode2v2 {
		state.Teams = make([]TeamInfo, 2)
		for t := 0; t < 2; t++ {
			state.Teams[t] = TeamInfo{TeamIndex: t}
		}
		for _, p := range players {
			team := &state.Teams[p.TeamIndex]
			team.PlayerIDs = append(team.PlayerIDs, p.ID)
		}
	}

	return state, nil
}

// ExecuteMove applies the active player's move and returns a new state
// snapshot. The input state is never mutated. captureCardIDs empty means the
// hand card is trailed onto the board; otherwise the set must be one of the
// options ValidCaptures reports for that card.
func ExecuteMove(state *GameState, handCardID string, captureCardIDs []string) (*GameState, error) {
	if state.Phase != PhasePlaying {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, state.Phase)
	}

	ns := state.Clone()
	// One-shot notification tokens from the previous move expire here.
	ns.LastBonusEvent = nil
	ns.ActiveScopaPlayerIndex = -1

	active := ns.ActivePlayerIndex
	player := ns.ActivePlayer()

	card, ok := FindByID(player.Hand, handCardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotInHand, handCardID)
	}

	player.Hand = RemoveByID(player.Hand, handCardID)

	if len(captureCardIDs) > 0 {
		captured, err := matchCaptureOption(card, ns.Board, captureCardIDs)
		if err != nil {
			return nil, err
		}

		ns.Board = RemoveByID(ns.Board, captureCardIDs...)

		pile := append([]Card{card}, captured...)
		player.CapturedCards = append(player.CapturedCards, pile...)
		if team := ns.TeamOf(active); team != nil {
			team.CapturedCards = append(team.CapturedCards, pile...)
		}

		// A non-Jack capture that sweeps the board scores a broom. The
		// Jack's catch-all is excluded by rule.
		if len(ns.Board) == 0 && card.Rank != RankJack {
			ns.applyScopa(active)
		}

		ns.LastCapturingPlayerIndex = active
	} else {
		ns.Board = append(ns.Board, card)
	}

	if ns.AllHandsEmpty() {
		if len(ns.Deck) > 0 {
			ns.Deck = dealCards(ns.Deck, ns.Players, HandSize, ns.DealOrder)
			ns.Round++
			ns.ActivePlayerIndex = ns.DealOrder
			ns.DealID = uuid.NewString()
			return ns, nil
		}
		ns.endRound()
		return ns, nil
	}

	ns.ActivePlayerIndex = (active + 1) % len(ns.Players)
	return ns, nil
}

// StartNextRound transitions a scored round back to play: the deal rotates
// one seat, a fresh deck is dealt, captures and pending brooms reset while
// cumulative scores carry over.
func StartNextRound(rng *rand.Rand, state *GameState) (*GameState, error) {
	if state.Phase != PhaseScoring {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, state.Phase)
	}

	ns := state.Clone()
	ns.DealOrder = (ns.DealOrder + 1) % len(ns.Players)
	ns.Round++
	ns.Phase = PhasePlaying
	ns.LastCapturingPlayerIndex = -1
	ns.ActiveScopaPlayerIndex = -1
	ns.LastBonusEvent = nil
	ns.DealID = uuid.NewString()

	for i := range ns.Players {
		ns.Players[i].Hand = nil
		ns.Players[i].CapturedCards = nil
		ns.Players[i].RoundScopas = 0
	}
	for i := range ns.Teams {
		ns.Teams[i].CapturedCards = nil
		ns.Teams[i].RoundScopas = 0
	}

	deck := ShuffleDeck(rng, NewDeck())
	deck = dealCards(deck, ns.Players, HandSize, ns.DealOrder)
	ns.Board = append([]Card{}, deck[:BoardSize]...)
	ns.Deck = deck[BoardSize:]
	ns.ActivePlayerIndex = ns.DealOrder

	return ns, nil
}

// FinishGame marks the match over. The host calls this once a cumulative
// score reaches the win threshold.
func FinishGame(state *GameState) *GameState {
	ns := state.Clone()
	ns.Phase = PhaseGameOver
	return ns
}

// dealCards deals count cards to each player starting from the dealOrder
// seat, consuming from the front of the deck, and returns the remaining
// deck. A short deck deals fewer cards without error; supply is the
// caller's concern.
func dealCards(deck []Card, players []Player, count, dealOrder int) []Card {
	n := len(players)
	for offset := 0; offset < n; offset++ {
		seat := (dealOrder + offset) % n
		take := count
		if take > len(deck) {
			take = len(deck)
		}
		players[seat].Hand = append(players[seat].Hand, deck[:take]...)
		deck = deck[take:]
	}
	return deck
}

// matchCaptureOption re-derives legality: the submitted id set must equal one
// of the solver's options for the played card.
func matchCaptureOption(card Card, board []Card, captureCardIDs []string) ([]Card, error) {
	want := make(map[string]bool, len(captureCardIDs))
	for _, id := range captureCardIDs {
		want[id] = true
	}
	if len(want) != len(captureCardIDs) {
		return nil, fmt.Errorf("%w: duplicate ids", ErrIllegalCapture)
	}

	for _, option := range ValidCaptures(card, board) {
		if len(option) != len(want) {
			continue
		}
		match := true
		for _, c := range option {
			if !want[c.ID] {
				match = false
				break
			}
		}
		if match {
			return option, nil
		}
	}
	return nil, fmt.Errorf("%w: playing %s", ErrIllegalCapture, card)
}

// applyScopa credits a broom to the capturing side, cancelling against the
// opposing side's pending brooms first.
func (g *GameState) applyScopa(capturerIndex int) {
	if g.GameMode == Mode2v2 {
		own := g.TeamOf(capturerIndex)
		opp := &g.Teams[1-own.TeamIndex]
		if opp.RoundScopas > 0 {
			opp.RoundScopas--
		} else {
			own.RoundScopas++
		}
	} else {
		opp := &g.Players[1-capturerIndex]
		if opp.RoundScopas > 0 {
			opp.RoundScopas--
		} else {
			g.Players[capturerIndex].RoundScopas++
		}
	}

	g.ActiveScopaPlayerIndex = capturerIndex
	g.LastBonusEvent = &BonusEvent{
		PlayerID:  g.Players[capturerIndex].ID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// endRound awards leftover board cards and folds round scores into the
// cumulative totals. When nobody captured all round the dealer's side takes
// the leftovers, keeping the 52-card conservation invariant.
func (g *GameState) endRound() {
	receiver := g.LastCapturingPlayerIndex
	if receiver < 0 {
		receiver = g.DealOrder
	}
	if len(g.Board) > 0 {
		g.Players[receiver].CapturedCards = append(g.Players[receiver].CapturedCards, g.Board...)
		if team := g.TeamOf(receiver); team != nil {
			team.CapturedCards = append(team.CapturedCards, g.Board...)
		}
		g.Board = nil
	}

	g.Phase = PhaseScoring

	if g.GameMode == Mode2v2 {
		for i := range g.Teams {
			g.Teams[i].Score += ScoreTeam(&g.Teams[i]).Total
		}
	} else {
		for i := range g.Players {
			g.Players[i].Score += ScorePlayer(&g.Players[i]).Total
		}
	}
}
