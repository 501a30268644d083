package app

// Supported table sizes. Two seats play head-to-head, four seats play 2v2
// with diagonal teammates.
const (
	MinPlayersToStartGame = 2
	MaxPlayers            = 4
)
