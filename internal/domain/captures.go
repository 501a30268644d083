package domain

// CaptureTarget is the sum a number card must match on the board: the played
// card's value and the captured cards' values must total eleven.
const CaptureTarget = 11

// ValidCaptures enumerates every legal capture for playing handCard against
// the board. An empty result means the card can only be trailed.
//
// Rules:
//   - Jack sweeps the whole board except Queens and Kings, as one option.
//   - Queen/King captures a same-rank board card; each match is its own
//     single-card option, never bundled.
//   - A number card (A..10) captures any subset of the board's number cards
//     whose values sum to 11 minus its own value. Every qualifying subset is
//     reported; picking one is the caller's job.
func ValidCaptures(handCard Card, board []Card) [][]Card {
	switch handCard.Rank {
	case RankJack:
		return jackCapture(board)
	case RankQueen, RankKing:
		return rankMatchCaptures(handCard.Rank, board)
	default:
		return sumCaptures(CaptureTarget-handCard.Value, board)
	}
}

func jackCapture(board []Card) [][]Card {
	var taken []Card
	for _, c := range board {
		if c.Rank == RankQueen || c.Rank == RankKing {
			continue
		}
		taken = append(taken, c)
	}
	if len(taken) == 0 {
		return nil
	}
	return [][]Card{taken}
}

func rankMatchCaptures(rank Rank, board []Card) [][]Card {
	var options [][]Card
	for _, c := range board {
		if c.Rank == rank {
			options = append(options, []Card{c})
		}
	}
	return options
}

// sumCaptures enumerates all subsets of the board's number cards summing to
// target, by backtracking with sum pruning. Subsets are distinguished by card
// identity, so equal-valued cards yield separate options.
func sumCaptures(target int, board []Card) [][]Card {
	if target <= 0 {
		return nil
	}
	numbers := make([]Card, 0, len(board))
	for _, c := range board {
		if !c.IsPicture() {
			numbers = append(numbers, c)
		}
	}

	var options [][]Card
	var pick []Card
	var walk func(from, remaining int)
	walk = func(from, remaining int) {
		if remaining == 0 {
			options = append(options, append([]Card{}, pick...))
			return
		}
		for i := from; i < len(numbers); i++ {
			if numbers[i].Value > remaining {
				continue
			}
			pick = append(pick, numbers[i])
			walk(i+1, remaining-numbers[i].Value)
			pick = pick[:len(pick)-1]
		}
	}
	walk(0, target)
	return options
}
