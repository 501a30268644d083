package domain

import (
	"sort"
	"strings"
	"testing"
)

func tc(id string, suit Suit, rank Rank) Card {
	return Card{ID: id, Suit: suit, Rank: rank, Value: CardValue(rank)}
}

// optionKey canonicalizes a capture set by sorted ids for comparison.
func optionKey(cards []Card) string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func optionKeys(options [][]Card) []string {
	keys := make([]string, len(options))
	for i, o := range options {
		keys[i] = optionKey(o)
	}
	sort.Strings(keys)
	return keys
}

func TestJackSweepsBoardExceptQueensAndKings(t *testing.T) {
	board := []Card{
		tc("aceD", SuitDiamonds, RankAce),
		tc("fiveC", SuitClubs, 5),
		tc("queenS", SuitSpades, RankQueen),
		tc("kingH", SuitHearts, RankKing),
	}
	jack := tc("jackC", SuitClubs, RankJack)

	options := ValidCaptures(jack, board)
	if len(options) != 1 {
		t.Fatalf("jack options = %d, want 1", len(options))
	}
	if got, want := optionKey(options[0]), "aceD,fiveC"; got != want {
		t.Fatalf("jack capture = %s, want %s", got, want)
	}
}

func TestJackHasNoOptionOnPictureOnlyBoard(t *testing.T) {
	board := []Card{
		tc("queenS", SuitSpades, RankQueen),
		tc("kingH", SuitHearts, RankKing),
	}
	if options := ValidCaptures(tc("jackC", SuitClubs, RankJack), board); len(options) != 0 {
		t.Fatalf("jack options = %d, want 0", len(options))
	}
}

func TestQueenKingCapturePerCardNotBundled(t *testing.T) {
	board := []Card{
		tc("kingH", SuitHearts, RankKing),
		tc("kingS", SuitSpades, RankKing),
		tc("sevenD", SuitDiamonds, 7),
	}
	king := tc("kingC", SuitClubs, RankKing)

	options := ValidCaptures(king, board)
	if len(options) != 2 {
		t.Fatalf("king options = %d, want 2 separate single-card options", len(options))
	}
	for _, o := range options {
		if len(o) != 1 || o[0].Rank != RankKing {
			t.Fatalf("king option = %v, want one king", o)
		}
	}

	if options := ValidCaptures(tc("queenC", SuitClubs, RankQueen), board); len(options) != 0 {
		t.Fatalf("queen options = %d, want 0 with no queens on board", len(options))
	}
}

func TestNumberCardSubsetSumEnumeration(t *testing.T) {
	// Playing a 4 targets 7: {7}, {3,4}, {ace,2,4} and {ace,2,3}+... are
	// checked exhaustively against the fixed board.
	board := []Card{
		tc("sevenH", SuitHearts, 7),
		tc("threeC", SuitClubs, 3),
		tc("fourS", SuitSpades, 4),
		tc("aceD", SuitDiamonds, RankAce),
		tc("twoH", SuitHearts, 2),
		tc("queenS", SuitSpades, RankQueen),
	}
	four := tc("fourH", SuitHearts, 4)

	got := optionKeys(ValidCaptures(four, board))
	want := optionKeys([][]Card{
		{tc("sevenH", SuitHearts, 7)},
		{tc("threeC", SuitClubs, 3), tc("fourS", SuitSpades, 4)},
		{tc("aceD", SuitDiamonds, RankAce), tc("twoH", SuitHearts, 2), tc("fourS", SuitSpades, 4)},
	})

	if len(got) != len(want) {
		t.Fatalf("options = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("options = %v, want %v", got, want)
		}
	}
}

func TestDuplicateValuedCardsYieldDistinctOptions(t *testing.T) {
	// Two distinct sixes both complete 5+6=11; each must be its own option.
	board := []Card{
		tc("sixH", SuitHearts, 6),
		tc("sixC", SuitClubs, 6),
	}
	five := tc("fiveS", SuitSpades, 5)

	options := ValidCaptures(five, board)
	if len(options) != 2 {
		t.Fatalf("options = %d, want 2 distinct single-six options", len(options))
	}
	if optionKey(options[0]) == optionKey(options[1]) {
		t.Fatalf("options collapsed to the same identity set")
	}
}

func TestNumberCardIgnoresPictureCards(t *testing.T) {
	// J=11 would "complete" any sum if misclassified; board holds only
	// pictures so no capture may exist.
	board := []Card{
		tc("jackH", SuitHearts, RankJack),
		tc("queenC", SuitClubs, RankQueen),
		tc("kingS", SuitSpades, RankKing),
	}
	if options := ValidCaptures(tc("tenD", SuitDiamonds, 10), board); len(options) != 0 {
		t.Fatalf("options = %d, want 0: pictures are excluded from sums", len(options))
	}
}

func TestNoCaptureMeansEmptyResult(t *testing.T) {
	board := []Card{tc("twoH", SuitHearts, 2)}
	if options := ValidCaptures(tc("threeS", SuitSpades, 3), board); len(options) != 0 {
		t.Fatalf("options = %d, want 0 (trail)", len(options))
	}
	if options := ValidCaptures(tc("aceC", SuitClubs, RankAce), nil); len(options) != 0 {
		t.Fatalf("options on empty board = %d, want 0", len(options))
	}
}
