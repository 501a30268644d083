package domain

// Phase represents the lifecycle stage of an Eleven match.
type Phase string

const (
	// PhaseDealing is the transient state while hands are being dealt.
	PhaseDealing Phase = "dealing"
	// PhasePlaying is the active state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseScoring is reached when the deck and all hands are exhausted.
	PhaseScoring Phase = "scoring"
	// PhaseGameOver is set by the host once a side reaches the win threshold.
	PhaseGameOver Phase = "game_over"
)

// GameMode selects head-to-head or two-team play.
type GameMode string

const (
	Mode1v1 GameMode = "1v1"
	Mode2v2 GameMode = "2v2"
)

// Player holds per-participant state within a match.
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Hand          []Card `json:"hand"`
	CapturedCards []Card `json:"captured_cards"`
	Score         int    `json:"score"`
	IsBot         bool   `json:"is_bot"`
	RoundScopas   int    `json:"round_scopas"`
	TeamIndex     int    `json:"team_index"` // -1 in 1v1
}

// TeamInfo aggregates capture state per team of two in 2v2 mode.
type TeamInfo struct {
	TeamIndex     int      `json:"team_index"`
	Score         int      `json:"score"`
	RoundScopas   int      `json:"round_scopas"`
	CapturedCards []Card   `json:"captured_cards"`
	PlayerIDs     []string `json:"player_ids"`
}

// BonusEvent is a one-shot notification token emitted when a broom bonus
// just occurred, for the host to sequence its presentation against.
type BonusEvent struct {
	PlayerID  string `json:"player_id"`
	Timestamp int64  `json:"timestamp"`
}

// GameState is the single source of truth for a match. Every transition
// returns a new snapshot; callers never see a partially applied move.
type GameState struct {
	Deck  []Card `json:"deck"`
	Board []Card `json:"board"`

	Players           []Player `json:"players"`
	ActivePlayerIndex int      `json:"active_player_index"`

	Round int   `json:"round"`
	Phase Phase `json:"phase"`

	// LastCapturingPlayerIndex is who receives leftover board cards when the
	// deck runs out. -1 until the first capture of the round.
	LastCapturingPlayerIndex int `json:"last_capturing_player_index"`
	ActiveScopaPlayerIndex   int `json:"active_scopa_player_index"`

	// DealOrder is the seat that starts each dealing pass; rotates between
	// rounds.
	DealOrder int `json:"deal_order"`
	// DealID changes on every dealing pass so the host can sequence deal
	// animations.
	DealID string `json:"deal_id"`

	GameMode GameMode   `json:"game_mode"`
	Teams    []TeamInfo `json:"teams,omitempty"`

	LastBonusEvent *BonusEvent `json:"last_bonus_event,omitempty"`
}

// ActivePlayer returns the player whose turn it is.
func (g *GameState) ActivePlayer() *Player {
	return &g.Players[g.ActivePlayerIndex]
}

// TeamOf returns the team the given seat belongs to, or nil in 1v1.
func (g *GameState) TeamOf(playerIndex int) *TeamInfo {
	if g.GameMode != Mode2v2 || len(g.Teams) == 0 {
		return nil
	}
	return &g.Teams[g.Players[playerIndex].TeamIndex]
}

// AllHandsEmpty reports whether no player holds any cards.
func (g *GameState) AllHandsEmpty() bool {
	for i := range g.Players {
		if len(g.Players[i].Hand) > 0 {
			return false
		}
	}
	return true
}

// CardsInPlay counts every card across deck, board, hands and captured
// piles. It stays at 52 for the life of a round.
func (g *GameState) CardsInPlay() int {
	n := len(g.Deck) + len(g.Board)
	for i := range g.Players {
		n += len(g.Players[i].Hand) + len(g.Players[i].CapturedCards)
	}
	return n
}

// Clone returns a deep copy of the state. Moves operate on the clone so the
// caller's snapshot is never mutated.
func (g *GameState) Clone() *GameState {
	out := *g
	out.Deck = append([]Card{}, g.Deck...)
	out.Board = append([]Card{}, g.Board...)
	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := p
		cp.Hand = append([]Card{}, p.Hand...)
		cp.CapturedCards = append([]Card{}, p.CapturedCards...)
		out.Players[i] = cp
	}
	if g.Teams != nil {
		out.Teams = make([]TeamInfo, len(g.Teams))
		for i, t := range g.Teams {
			ct := t
			ct.CapturedCards = append([]Card{}, t.CapturedCards...)
			ct.PlayerIDs = append([]string{}, t.PlayerIDs...)
			out.Teams[i] = ct
		}
	}
	if g.LastBonusEvent != nil {
		ev := *g.LastBonusEvent
		out.LastBonusEvent = &ev
	}
	return &out
}
