package board

import "fmt"

// Square represents a square on the board, numbered 0 = a8 .. 63 = h1:
// rank-major, starting at the top (black's back rank) and descending to
// the bottom (white's back rank) — the same order FEN piece placement is
// read in.
//
//	A8 =  0, B8 =  1, C8 =  2, D8 =  3, E8 =  4, F8 =  5, G8 =  6, H8 =  7,
//	A7 =  8, B7 =  9, C7 = 10, D7 = 11, E7 = 12, F7 = 13, G7 = 14, H7 = 15,
//	...
//	A1 = 56, B1 = 57, C1 = 58, D1 = 59, E1 = 60, F1 = 61, G1 = 62, H1 = 63
//
// A square is a bit-index into the bitboard layout. 6 bits.
type Square uint8

const (
	ZeroSquare Square = 0
	NumSquares Square = 64
)

var (
	A8, B8, C8, D8, E8, F8, G8, H8 = Square(0), Square(1), Square(2), Square(3), Square(4), Square(5), Square(6), Square(7)
	A1, B1, C1, D1, E1, F1, G1, H1 = Square(56), Square(57), Square(58), Square(59), Square(60), Square(61), Square(62), Square(63)
)

// NewSquare builds a Square from a File and Rank.
func NewSquare(f File, r Rank) Square {
	return Square((Rank8-r))*8 + Square(f)
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return 0, fmt.Errorf("invalid file: %v", f)
	}
	rank, ok := ParseRank(r)
	if !ok {
		return 0, fmt.Errorf("invalid rank: %v", r)
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return 0, fmt.Errorf("invalid square: %v", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) IsValid() bool {
	return s < NumSquares
}

func (s Square) Rank() Rank {
	return Rank8 - Rank(s/8)
}

func (s Square) File() File {
	return File(s % 8)
}

// Flip mirrors a square across the board's horizontal center line. Used to
// evaluate color-relative piece-square tables for black from white's table.
func (s Square) Flip() Square {
	return NewSquare(s.File(), Rank8-s.Rank())
}

func (s Square) String() string {
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

// Rank represents a chess board rank, Rank1=0 .. Rank8=7. 3 bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	ZeroRank Rank = 0
	NumRanks Rank = 8
)

func ParseRank(r rune) (Rank, bool) {
	switch r {
	case '1':
		return Rank1, true
	case '2':
		return Rank2, true
	case '3':
		return Rank3, true
	case '4':
		return Rank4, true
	case '5':
		return Rank5, true
	case '6':
		return Rank6, true
	case '7':
		return Rank7, true
	case '8':
		return Rank8, true
	default:
		return 0, false
	}
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

func (r Rank) String() string {
	return fmt.Sprintf("%d", r+1)
}

// File represents a chess board file, FileA=0 .. FileH=7. 3 bits.
type File uint8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	ZeroFile File = 0
	NumFiles File = 8
)

func ParseFile(r rune) (File, bool) {
	switch r {
	case 'a', 'A':
		return FileA, true
	case 'b', 'B':
		return FileB, true
	case 'c', 'C':
		return FileC, true
	case 'd', 'D':
		return FileD, true
	case 'e', 'E':
		return FileE, true
	case 'f', 'F':
		return FileF, true
	case 'g', 'G':
		return FileG, true
	case 'h', 'H':
		return FileH, true
	default:
		return 0, false
	}
}

func (f File) IsValid() bool {
	return f <= FileH
}

func (f File) V() int {
	return int(f)
}

func (f File) String() string {
	return string(rune('a' + f))
}
