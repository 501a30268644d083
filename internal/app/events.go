package app

import "eleven/internal/domain"

// EventKind identifies emitted app events for host dispatch.
type EventKind string

const (
	EventMatchStarted EventKind = "match_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventMovePlayed   EventKind = "move_played"
	EventScopaScored  EventKind = "scopa_scored"
	EventCardsDealt   EventKind = "cards_dealt"
	EventRoundStarted EventKind = "round_started"
	EventRoundEnded   EventKind = "round_ended"
	EventMatchEnded   EventKind = "match_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user ids; empty means broadcast
}

type MatchStartedPayload struct {
	Mode          domain.GameMode `json:"mode"`
	Round         int             `json:"round"`
	DealOrder     int             `json:"deal_order"`
	DealID        string          `json:"deal_id"`
	FirstTurnSeat int             `json:"first_turn_seat"`
	Board         []domain.Card   `json:"board"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Seat   int           `json:"seat"`
	Hand   []domain.Card `json:"hand"`
}

type MovePlayedPayload struct {
	Seat         int           `json:"seat"`
	Card         domain.Card   `json:"card"`
	Captured     []domain.Card `json:"captured,omitempty"`
	Trailed      bool          `json:"trailed"`
	NextTurnSeat int           `json:"next_turn_seat"`
	Board        []domain.Card `json:"board"`
}

type ScopaScoredPayload struct {
	Seat      int    `json:"seat"`
	PlayerID  string `json:"player_id"`
	Timestamp int64  `json:"timestamp"`
}

type CardsDealtPayload struct {
	Round  int    `json:"round"`
	DealID string `json:"deal_id"`
}

type RoundStartedPayload struct {
	Round         int           `json:"round"`
	DealOrder     int           `json:"deal_order"`
	DealID        string        `json:"deal_id"`
	FirstTurnSeat int           `json:"first_turn_seat"`
	Board         []domain.Card `json:"board"`
}

// SideScore reports a scoring side: a player seat in 1v1, a team in 2v2.
type SideScore struct {
	Index     int                   `json:"index"`
	Breakdown domain.ScoreBreakdown `json:"breakdown"`
	Score     int                   `json:"score"`
}

type RoundEndedPayload struct {
	Round int         `json:"round"`
	Sides []SideScore `json:"sides"`
}

type MatchEndedPayload struct {
	WinnerIndex int         `json:"winner_index"` // seat in 1v1, team in 2v2
	Sides       []SideScore `json:"sides"`
}
