package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
)

// Book is the opening-book lookup collaborator. SPEC_FULL §1 treats opening
// books as an external concern to the search/evaluation core; only the
// contract is specified here, grounded on the teacher's engine.Book
// interface and in-memory implementation (pkg/engine/book.go), adapted to
// the packed Move/mutable Position API.
type Book interface {
	// Find returns a list -- potentially empty -- of moves for the position
	// given in FEN. Once an empty list is returned for a game, the caller
	// should stop consulting the book for the remainder of that game.
	Find(ctx context.Context, position string) ([]board.Move, error)
}

// Line is a sequence of moves in long algebraic notation forming one
// opening line, e.g. {"e2e4", "e7e5", "g1f3"}.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook never returns a move.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// NewBook builds an in-memory opening book from a set of lines, keyed by the
// position reached along each line, so book moves replay regardless of the
// FEN move counters.
func NewBook(lines []Line) (Book, error) {
	m := map[string]map[board.Move]bool{}

	for _, line := range lines {
		pos, turn, _, _, err := fen.Decode(fen.Initial)
		if err != nil {
			return nil, err
		}

		for _, str := range line {
			from, to, promo, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("invalid line %q: %w", line, err)
			}
			m1, ok := board.FindMove(pos, from, to, promo)
			if !ok {
				return nil, fmt.Errorf("invalid line %q: move %v not legal", line, str)
			}

			key := bookKey(pos, turn)
			if m[key] == nil {
				m[key] = map[board.Move]bool{}
			}
			m[key][m1] = true

			pos.Make(m1)
			turn = turn.Opponent()
		}
	}

	dedup := map[string][]board.Move{}
	for k, v := range m {
		var list []board.Move
		for move := range v {
			list = append(list, move)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		dedup[k] = list
	}
	return &book{moves: dedup}, nil
}

type book struct {
	moves map[string][]board.Move // cropped-FEN key -> candidate moves
}

func (b *book) Find(ctx context.Context, position string) ([]board.Move, error) {
	pos, turn, _, _, err := fen.Decode(position)
	if err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	return b.moves[bookKey(pos, turn)], nil
}

func bookKey(pos *board.Position, turn board.Color) string {
	return fen.Encode(pos, turn, 0, 1)
}
