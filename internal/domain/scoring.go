package domain

// Point weights for the round-end count.
const (
	PointsPerAce       = 1
	PointsPerJack      = 1
	PointsBigCasino    = 3 // 10 of diamonds
	PointsLittleCasino = 2 // 2 of clubs
	PointsClubMajority = 7 // 7 or more captured clubs
	ClubMajorityCount  = 7
)

// Broom bonus multipliers by game mode.
const (
	ScopaBonus1v1 = 5
	ScopaBonus2v2 = 10
)

// ScoreBreakdown itemizes the points earned from a captured-card pile.
type ScoreBreakdown struct {
	ClubsCount   int `json:"clubs_count"`
	Aces         int `json:"aces"`
	Jacks        int `json:"jacks"`
	BigCasino    int `json:"big_casino"`
	LittleCasino int `json:"little_casino"`
	ClubsPoints  int `json:"clubs_points"`
	Scopas       int `json:"scopas"`
	ScopaPoints  int `json:"scopa_points"`
	Total        int `json:"total"`
}

// ScoreCards computes the breakdown for a captured pile plus pending broom
// bonuses. scopaBonus is the per-broom multiplier for the game mode.
func ScoreCards(captured []Card, roundScopas, scopaBonus int) ScoreBreakdown {
	b := ScoreBreakdown{Scopas: roundScopas}
	for _, c := range captured {
		if c.Suit == SuitClubs {
			b.ClubsCount++
		}
		switch {
		case c.Rank == RankAce:
			b.Aces++
		case c.Rank == RankJack:
			b.Jacks++
		}
		if c.Suit == SuitDiamonds && c.Value == 10 {
			b.BigCasino = PointsBigCasino
		}
		if c.Suit == SuitClubs && c.Value == 2 {
			b.LittleCasino = PointsLittleCasino
		}
	}
	if b.ClubsCount >= ClubMajorityCount {
		b.ClubsPoints = PointsClubMajority
	}
	b.ScopaPoints = roundScopas * scopaBonus
	b.Total = b.Aces*PointsPerAce + b.Jacks*PointsPerJack +
		b.BigCasino + b.LittleCasino + b.ClubsPoints + b.ScopaPoints
	return b
}

// ScorePlayer computes the round breakdown for an individual player (1v1).
func ScorePlayer(p *Player) ScoreBreakdown {
	return ScoreCards(p.CapturedCards, p.RoundScopas, ScopaBonus1v1)
}

// ScoreTeam computes the round breakdown for a team's aggregated pile (2v2).
func ScoreTeam(t *TeamInfo) ScoreBreakdown {
	return ScoreCards(t.CapturedCards, t.RoundScopas, ScopaBonus2v2)
}
