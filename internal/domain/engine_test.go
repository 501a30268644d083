package domain

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func twoPlayerState(hand0, hand1, board, deck []Card) *GameState {
	return &GameState{
		Deck:  deck,
		Board: board,
		Players: []Player{
			{ID: "p0", Name: "P0", Hand: hand0, TeamIndex: -1},
			{ID: "p1", Name: "P1", Hand: hand1, TeamIndex: -1},
		},
		ActivePlayerIndex:        0,
		Round:                    1,
		Phase:                    PhasePlaying,
		LastCapturingPlayerIndex: -1,
		ActiveScopaPlayerIndex:   -1,
		DealOrder:                0,
		DealID:                   "deal-1",
		GameMode:                 Mode1v1,
	}
}

func fourPlayerState() *GameState {
	state := &GameState{
		Players: []Player{
			{ID: "p0", Name: "P0", TeamIndex: 0},
			{ID: "p1", Name: "P1", TeamIndex: 1},
			{ID: "p2", Name: "P2", TeamIndex: 0},
			{ID: "p3", Name: "P3", TeamIndex: 1},
		},
		ActivePlayerIndex:        0,
		Round:                    1,
		Phase:                    PhasePlaying,
		LastCapturingPlayerIndex: -1,
		ActiveScopaPlayerIndex:   -1,
		DealOrder:                0,
		DealID:                   "deal-1",
		GameMode:                 Mode2v2,
		Teams: []TeamInfo{
			{TeamIndex: 0, PlayerIDs: []string{"p0", "p2"}},
			{TeamIndex: 1, PlayerIDs: []string{"p1", "p3"}},
		},
	}
	return state
}

func TestInitializeGame1v1(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state, err := InitializeGame(rng, []string{"Alice", "Bob"}, InitOptions{ForcedDealOrder: 1})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if state.GameMode != Mode1v1 {
		t.Fatalf("mode = %s, want 1v1", state.GameMode)
	}
	if state.Phase != PhasePlaying || state.Round != 1 {
		t.Fatalf("phase/round = %s/%d, want playing/1", state.Phase, state.Round)
	}
	if state.DealOrder != 1 || state.ActivePlayerIndex != 1 {
		t.Fatalf("deal order/active = %d/%d, want 1/1", state.DealOrder, state.ActivePlayerIndex)
	}
	for i, p := range state.Players {
		if len(p.Hand) != HandSize {
			t.Fatalf("player %d hand = %d, want %d", i, len(p.Hand), HandSize)
		}
		if p.TeamIndex != -1 {
			t.Fatalf("player %d team = %d, want -1 in 1v1", i, p.TeamIndex)
		}
	}
	if len(state.Board) != BoardSize {
		t.Fatalf("board = %d, want %d", len(state.Board), BoardSize)
	}
	if len(state.Deck) != DeckSize-2*HandSize-BoardSize {
		t.Fatalf("deck = %d, want %d", len(state.Deck), DeckSize-2*HandSize-BoardSize)
	}
	if state.CardsInPlay() != DeckSize {
		t.Fatalf("cards in play = %d, want %d", state.CardsInPlay(), DeckSize)
	}
	if state.LastCapturingPlayerIndex != -1 || state.DealID == "" {
		t.Fatalf("unexpected capture index or deal id: %d %q", state.LastCapturingPlayerIndex, state.DealID)
	}
	if state.Teams != nil {
		t.Fatalf("teams must not be set in 1v1")
	}
}

func TestInitializeGame2v2DiagonalTeams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	state, err := InitializeGame(rng, []string{"A", "B", "C", "D"}, InitOptions{
		ForcedDealOrder: 0,
		PlayerIDs:       []string{"u0", "u1", "u2", "u3"},
		BotSeats:        []int{2, 3},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if state.GameMode != Mode2v2 {
		t.Fatalf("mode = %s, want inferred 2v2", state.GameMode)
	}
	for i, p := range state.Players {
		if p.TeamIndex != i%2 {
			t.Fatalf("player %d team = %d, want %d", i, p.TeamIndex, i%2)
		}
	}
	if !state.Players[2].IsBot || !state.Players[3].IsBot || state.Players[0].IsBot {
		t.Fatalf("bot seats not applied: %+v", state.Players)
	}
	if len(state.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(state.Teams))
	}
	if got := state.Teams[0].PlayerIDs; len(got) != 2 || got[0] != "u0" || got[1] != "u2" {
		t.Fatalf("team 0 players = %v, want [u0 u2]", got)
	}
	if len(state.Deck) != DeckSize-4*HandSize-BoardSize {
		t.Fatalf("deck = %d, want %d", len(state.Deck), DeckSize-4*HandSize-BoardSize)
	}
}

func TestInitializeGameRejectsBadPlayerCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := InitializeGame(rng, []string{"A", "B", "C"}, InitOptions{}); !errors.Is(err, ErrPlayerCount) {
		t.Fatalf("err = %v, want ErrPlayerCount", err)
	}
}

func TestInitializeGameRejectsModeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// A four-seat table forced into 1v1 would leave the broom offset with no
	// single opponent seat to address; it must be rejected up front.
	if _, err := InitializeGame(rng, []string{"A", "B", "C", "D"}, InitOptions{Mode: Mode1v1}); !errors.Is(err, ErrPlayerCount) {
		t.Fatalf("forced 1v1 with 4 players: err = %v, want ErrPlayerCount", err)
	}
	if _, err := InitializeGame(rng, []string{"A", "B"}, InitOptions{Mode: Mode2v2}); !errors.Is(err, ErrPlayerCount) {
		t.Fatalf("forced 2v2 with 2 players: err = %v, want ErrPlayerCount", err)
	}

	// Matching forced modes still initialize.
	if _, err := InitializeGame(rng, []string{"A", "B"}, InitOptions{Mode: Mode1v1, ForcedDealOrder: 0}); err != nil {
		t.Fatalf("forced 1v1 with 2 players: %v", err)
	}
	if _, err := InitializeGame(rng, []string{"A", "B", "C", "D"}, InitOptions{Mode: Mode2v2, ForcedDealOrder: 0}); err != nil {
		t.Fatalf("forced 2v2 with 4 players: %v", err)
	}
}

func TestExecuteMoveTrail(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("threeS", SuitSpades, 3), tc("nineH", SuitHearts, 9)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("twoH", SuitHearts, 2)},
		nil,
	)

	next, err := ExecuteMove(state, "threeS", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(next.Board) != 2 || !ContainsID(next.Board, "threeS") {
		t.Fatalf("board = %v, want trailed threeS", next.Board)
	}
	if len(next.Players[0].Hand) != 1 {
		t.Fatalf("hand = %v, want one card left", next.Players[0].Hand)
	}
	if len(next.Players[0].CapturedCards) != 0 {
		t.Fatalf("trail must not capture")
	}
	if next.ActivePlayerIndex != 1 {
		t.Fatalf("active = %d, want 1", next.ActivePlayerIndex)
	}
	if next.LastCapturingPlayerIndex != -1 {
		t.Fatalf("trail must not update last capturer")
	}
}

func TestExecuteMoveCapture(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("fourS", SuitSpades, 4), tc("nineH", SuitHearts, 9)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("sevenH", SuitHearts, 7), tc("kingD", SuitDiamonds, RankKing)},
		nil,
	)

	next, err := ExecuteMove(state, "fourS", []string{"sevenH"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	pile := next.Players[0].CapturedCards
	if len(pile) != 2 || !ContainsID(pile, "fourS") || !ContainsID(pile, "sevenH") {
		t.Fatalf("pile = %v, want played+captured", pile)
	}
	if ContainsID(next.Board, "sevenH") || len(next.Board) != 1 {
		t.Fatalf("board = %v, want only the king", next.Board)
	}
	if next.LastCapturingPlayerIndex != 0 {
		t.Fatalf("last capturer = %d, want 0", next.LastCapturingPlayerIndex)
	}
	// Board not emptied, so no broom.
	if next.Players[0].RoundScopas != 0 || next.LastBonusEvent != nil {
		t.Fatalf("unexpected broom on partial capture")
	}
}

func TestExecuteMoveUnknownHandCard(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("threeS", SuitSpades, 3)},
		[]Card{tc("fourC", SuitClubs, 4)},
		nil, nil,
	)
	if _, err := ExecuteMove(state, "missing", nil); !errors.Is(err, ErrCardNotInHand) {
		t.Fatalf("err = %v, want ErrCardNotInHand", err)
	}
}

func TestExecuteMoveRejectsIllegalCapture(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("fourS", SuitSpades, 4), tc("aceH", SuitHearts, RankAce)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("sixH", SuitHearts, 6)}, // 4 targets 7; 6 does not qualify
		nil,
	)
	if _, err := ExecuteMove(state, "fourS", []string{"sixH"}); !errors.Is(err, ErrIllegalCapture) {
		t.Fatalf("err = %v, want ErrIllegalCapture", err)
	}
}

func TestScopaOffsetsOpponentBeforeIncrementing(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("fiveS", SuitSpades, 5), tc("nineH", SuitHearts, 9)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("sixH", SuitHearts, 6)},
		nil,
	)
	state.Players[1].RoundScopas = 1

	next, err := ExecuteMove(state, "fiveS", []string{"sixH"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if next.Players[0].RoundScopas != 0 {
		t.Fatalf("capturer scopas = %d, want 0 (offset, not increment)", next.Players[0].RoundScopas)
	}
	if next.Players[1].RoundScopas != 0 {
		t.Fatalf("opponent scopas = %d, want 0 after offset", next.Players[1].RoundScopas)
	}
	if next.LastBonusEvent == nil || next.LastBonusEvent.PlayerID != "p0" {
		t.Fatalf("bonus event = %+v, want one for p0", next.LastBonusEvent)
	}
	if next.ActiveScopaPlayerIndex != 0 {
		t.Fatalf("active scopa index = %d, want 0", next.ActiveScopaPlayerIndex)
	}
}

func TestScopaIncrementsWhenOpponentHasNone(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("fiveS", SuitSpades, 5), tc("nineH", SuitHearts, 9)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("sixH", SuitHearts, 6)},
		nil,
	)

	next, err := ExecuteMove(state, "fiveS", []string{"sixH"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if next.Players[0].RoundScopas != 1 {
		t.Fatalf("capturer scopas = %d, want 1", next.Players[0].RoundScopas)
	}
}

func TestJackSweepIsNotScopa(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("jackS", SuitSpades, RankJack), tc("nineH", SuitHearts, 9)},
		[]Card{tc("fourC", SuitClubs, 4)},
		[]Card{tc("sixH", SuitHearts, 6), tc("aceD", SuitDiamonds, RankAce)},
		nil,
	)

	next, err := ExecuteMove(state, "jackS", []string{"sixH", "aceD"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(next.Board) != 0 {
		t.Fatalf("board = %v, want swept", next.Board)
	}
	if next.Players[0].RoundScopas != 0 || next.LastBonusEvent != nil {
		t.Fatalf("jack sweep must not score a broom")
	}
	if next.LastCapturingPlayerIndex != 0 {
		t.Fatalf("jack sweep is still a capture")
	}
}

func TestMidRoundRedealKeepsBoard(t *testing.T) {
	deck := make([]Card, 0, 8)
	for i := 0; i < 8; i++ {
		deck = append(deck, tc(string(rune('a'+i)), SuitHearts, Rank(3+i%5)))
	}
	state := twoPlayerState(
		[]Card{tc("threeS", SuitSpades, 3)},
		nil,
		[]Card{tc("kingD", SuitDiamonds, RankKing)},
		deck,
	)

	next, err := ExecuteMove(state, "threeS", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if next.Round != 2 {
		t.Fatalf("round = %d, want 2 after refill", next.Round)
	}
	for i, p := range next.Players {
		if len(p.Hand) != HandSize {
			t.Fatalf("player %d hand = %d, want %d", i, len(p.Hand), HandSize)
		}
	}
	if len(next.Deck) != 0 {
		t.Fatalf("deck = %d, want 0", len(next.Deck))
	}
	// Board persists across the refill, including the trailed card.
	if len(next.Board) != 2 || !ContainsID(next.Board, "threeS") {
		t.Fatalf("board = %v, want king + trailed three", next.Board)
	}
	if next.ActivePlayerIndex != next.DealOrder {
		t.Fatalf("active = %d, want deal order %d", next.ActivePlayerIndex, next.DealOrder)
	}
	if next.DealID == state.DealID {
		t.Fatalf("deal id must change on a refill")
	}
	if next.Phase != PhasePlaying {
		t.Fatalf("phase = %s, want playing", next.Phase)
	}
}

func TestRoundEndAwardsLeftoversToLastCapturer(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("threeS", SuitSpades, 3)},
		nil,
		[]Card{tc("aceH", SuitHearts, RankAce)},
		nil,
	)
	state.LastCapturingPlayerIndex = 1

	next, err := ExecuteMove(state, "threeS", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if next.Phase != PhaseScoring {
		t.Fatalf("phase = %s, want scoring", next.Phase)
	}
	pile := next.Players[1].CapturedCards
	if len(pile) != 2 || !ContainsID(pile, "aceH") || !ContainsID(pile, "threeS") {
		t.Fatalf("pile = %v, want both leftovers to last capturer", pile)
	}
	if len(next.Board) != 0 {
		t.Fatalf("board = %v, want empty", next.Board)
	}
	if next.Players[1].Score != 1 {
		t.Fatalf("score = %d, want 1 from the ace", next.Players[1].Score)
	}
	if next.Players[0].Score != 0 {
		t.Fatalf("player 0 score = %d, want 0", next.Players[0].Score)
	}
}

func TestRoundEndWithoutAnyCaptureGoesToDealer(t *testing.T) {
	state := twoPlayerState(
		[]Card{tc("threeS", SuitSpades, 3)},
		nil,
		[]Card{tc("kingD", SuitDiamonds, RankKing)},
		nil,
	)
	state.DealOrder = 0

	next, err := ExecuteMove(state, "threeS", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	pile := next.Players[0].CapturedCards
	if len(pile) != 2 {
		t.Fatalf("pile = %v, want leftovers assigned to dealer", pile)
	}
	total := len(next.Board)
	for _, p := range next.Players {
		total += len(p.Hand) + len(p.CapturedCards)
	}
	if total != 2 {
		t.Fatalf("cards tracked = %d, want 2 (no card may vanish)", total)
	}
}

func TestExecuteMoveDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	state, err := InitializeGame(rng, []string{"A", "B"}, InitOptions{ForcedDealOrder: 0})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	before := mustJSON(t, state)
	card := state.ActivePlayer().Hand[0]
	var capture []string
	if options := ValidCaptures(card, state.Board); len(options) > 0 {
		for _, c := range options[0] {
			capture = append(capture, c.ID)
		}
	}

	if _, err := ExecuteMove(state, card.ID, capture); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if after := mustJSON(t, state); after != before {
		t.Fatalf("input state was mutated by ExecuteMove")
	}
}

func TestStartNextRoundRotatesDealAndResets(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	state := twoPlayerState(nil, nil, nil, nil)
	state.Phase = PhaseScoring
	state.Round = 3
	state.DealOrder = 1
	state.Players[0].Score = 12
	state.Players[0].CapturedCards = []Card{tc("aceH", SuitHearts, RankAce)}
	state.Players[0].RoundScopas = 2

	next, err := StartNextRound(rng, state)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}

	if next.DealOrder != 0 {
		t.Fatalf("deal order = %d, want rotated to 0", next.DealOrder)
	}
	if next.Round != 4 || next.Phase != PhasePlaying {
		t.Fatalf("round/phase = %d/%s, want 4/playing", next.Round, next.Phase)
	}
	if next.Players[0].Score != 12 {
		t.Fatalf("cumulative score must carry over, got %d", next.Players[0].Score)
	}
	if len(next.Players[0].CapturedCards) != 0 || next.Players[0].RoundScopas != 0 {
		t.Fatalf("captures and pending brooms must reset")
	}
	if next.CardsInPlay() != DeckSize {
		t.Fatalf("cards in play = %d, want %d", next.CardsInPlay(), DeckSize)
	}
	if next.ActivePlayerIndex != next.DealOrder {
		t.Fatalf("active = %d, want new dealer %d", next.ActivePlayerIndex, next.DealOrder)
	}

	if _, err := StartNextRound(rng, next); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase outside scoring", err)
	}
}

func TestTeamCaptureAggregationAndOffset(t *testing.T) {
	state := fourPlayerState()
	state.Players[0].Hand = []Card{tc("fiveS", SuitSpades, 5), tc("nineH", SuitHearts, 9)}
	state.Players[1].Hand = []Card{tc("fourC", SuitClubs, 4)}
	state.Players[2].Hand = []Card{tc("eightD", SuitDiamonds, 8)}
	state.Players[3].Hand = []Card{tc("twoH", SuitHearts, 2)}
	state.Board = []Card{tc("sixH", SuitHearts, 6)}
	state.Teams[1].RoundScopas = 1

	next, err := ExecuteMove(state, "fiveS", []string{"sixH"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	team := next.Teams[0]
	if len(team.CapturedCards) != 2 {
		t.Fatalf("team pile = %v, want played+captured mirrored", team.CapturedCards)
	}
	if next.Teams[0].RoundScopas != 0 || next.Teams[1].RoundScopas != 0 {
		t.Fatalf("team brooms = %d/%d, want pairwise offset to 0/0",
			next.Teams[0].RoundScopas, next.Teams[1].RoundScopas)
	}
	if len(next.Players[0].CapturedCards) != 2 {
		t.Fatalf("player pile = %v, want capture recorded individually too", next.Players[0].CapturedCards)
	}
}

func TestFullGameConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	state, err := InitializeGame(rng, []string{"A", "B"}, InitOptions{ForcedDealOrder: 0})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for moves := 0; state.Phase == PhasePlaying; moves++ {
		if moves > 200 {
			t.Fatalf("round did not finish")
		}
		card := state.ActivePlayer().Hand[0]
		var capture []string
		if options := ValidCaptures(card, state.Board); len(options) > 0 {
			for _, c := range options[0] {
				capture = append(capture, c.ID)
			}
		}
		next, err := ExecuteMove(state, card.ID, capture)
		if err != nil {
			t.Fatalf("move %d: %v", moves, err)
		}
		if got := next.CardsInPlay(); got != DeckSize {
			t.Fatalf("move %d: cards in play = %d, want %d", moves, got, DeckSize)
		}
		state = next
	}

	if state.Phase != PhaseScoring {
		t.Fatalf("phase = %s, want scoring at round end", state.Phase)
	}
	if len(state.Deck) != 0 || len(state.Board) != 0 {
		t.Fatalf("deck/board = %d/%d, want 0/0", len(state.Deck), len(state.Board))
	}
	captured := 0
	for _, p := range state.Players {
		captured += len(p.CapturedCards)
	}
	if captured != DeckSize {
		t.Fatalf("captured = %d, want all %d cards", captured, DeckSize)
	}
}
