package nakama

// RpcQuickMatch is the Nakama RPC id clients call to find or create a
// lobby-capable match.
const RpcQuickMatch = "quick_match"

// MatchNameEleven is the authoritative match handler name registered with
// Nakama.
const MatchNameEleven = "eleven_match"

// LeaderboardWins is the leaderboard that accumulates match wins.
const LeaderboardWins = "eleven_wins"

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpPlayCard  int64 = 2
	OpNextRound int64 = 3

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpMatchStarted int64 = 103
	OpHandDealt    int64 = 104 // sent privately
	OpMovePlayed   int64 = 105
	OpScopaScored  int64 = 106
	OpCardsDealt   int64 = 107
	OpRoundStarted int64 = 108
	OpRoundEnded   int64 = 109
	OpMatchEnded   int64 = 110
	OpGameError    int64 = 111
)
