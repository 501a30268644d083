package domain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Suit is a card suit, using the single-letter form clients expect.
type Suit string

const (
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
	SuitSpades   Suit = "S"
)

// Rank runs 1..13: Ace=1, numerals at face value, J=11, Q=12, K=13.
type Rank int

const (
	RankAce   Rank = 1
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Card is a single playing card. Identity is by ID; two cards with the same
// suit and rank in play are still distinct objects.
type Card struct {
	ID    string `json:"id"`
	Suit  Suit   `json:"suit"`
	Rank  Rank   `json:"rank"`
	Value int    `json:"value"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

func (r Rank) String() string {
	switch r {
	case RankAce:
		return "A"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// IsPicture reports whether the card is a Jack, Queen or King. Picture cards
// never participate in number-sum capture logic.
func (c Card) IsPicture() bool {
	return c.Rank >= RankJack
}

// CardValue maps a rank to its capture value: A=1, numerals face value,
// J=11, Q=12, K=13.
func CardValue(r Rank) int {
	return int(r)
}

// NewDeck returns an ordered 52-card deck with fresh unique ids.
func NewDeck() []Card {
	suits := []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, Card{
				ID:    uuid.NewString(),
				Suit:  s,
				Rank:  r,
				Value: CardValue(r),
			})
		}
	}
	return deck
}

// ShuffleDeck returns a uniformly shuffled copy of the given deck using
// Fisher-Yates. The input is not mutated.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FindByID returns the card with the given id and whether it was found.
func FindByID(cards []Card, id string) (Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// ContainsID reports whether any card in the slice has the given id.
func ContainsID(cards []Card, id string) bool {
	_, ok := FindByID(cards, id)
	return ok
}

// RemoveByID returns a copy of cards with the identified cards removed.
func RemoveByID(cards []Card, ids ...string) []Card {
	if len(ids) == 0 {
		return append([]Card{}, cards...)
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if drop[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}
