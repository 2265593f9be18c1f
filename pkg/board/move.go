package board

import (
	"fmt"
	"strings"
)

// MoveKind identifies the semantics of a Move beyond its from/to squares.
// Ordinal values and their ordering are cross-checked against the
// MT_QUIET..MT_NULL constants of the reference engine this system was
// distilled from.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	Capture
	Promotion
	CapturePromotion
	PawnDouble
	EnPassantCapture
	CastleWhiteKingSide
	CastleWhiteQueenSide
	CastleBlackKingSide
	CastleBlackQueenSide
	NullMove
)

func (k MoveKind) IsCapture() bool {
	return k == Capture || k == CapturePromotion || k == EnPassantCapture
}

func (k MoveKind) IsCastle() bool {
	return k == CastleWhiteKingSide || k == CastleWhiteQueenSide || k == CastleBlackKingSide || k == CastleBlackQueenSide
}

func (k MoveKind) IsPromotion() bool {
	return k == Promotion || k == CapturePromotion
}

func (k MoveKind) String() string {
	switch k {
	case Quiet:
		return "quiet"
	case Capture:
		return "capture"
	case Promotion:
		return "promotion"
	case CapturePromotion:
		return "capture-promotion"
	case PawnDouble:
		return "pawn-double"
	case EnPassantCapture:
		return "en-passant"
	case CastleWhiteKingSide:
		return "O-O"
	case CastleWhiteQueenSide:
		return "O-O-O"
	case CastleBlackKingSide:
		return "o-o"
	case CastleBlackQueenSide:
		return "o-o-o"
	case NullMove:
		return "null"
	default:
		return "?"
	}
}

// Move is a packed 32-bit encoding of a chess move:
//
//	bits  0- 5: from square
//	bits  6-11: to square
//	bits 12-14: moving piece
//	bits 15-18: move kind
//	bits 19-21: captured piece (NoPiece if none)
//	bits 22-24: promotion piece (NoPiece if none)
//	bits 25-30: en-passant target square created by this move (valid only
//	            in combination with PawnDouble)
type Move uint32

// NoMove is the zero value, distinct from NewNullMove's explicit sentinel.
const NoMove Move = 0

const (
	fromShift  = 0
	toShift    = 6
	pieceShift = 12
	kindShift  = 15
	captShift  = 19
	promoShift = 22
	epShift    = 25

	sixBitMask   = 0x3F
	threeBitMask = 0x7
	fourBitMask  = 0xF
)

func NewMove(from, to Square, piece Piece, kind MoveKind, captured, promotion Piece) Move {
	return Move(uint32(from)<<fromShift |
		uint32(to)<<toShift |
		uint32(piece)<<pieceShift |
		uint32(kind)<<kindShift |
		uint32(captured)<<captShift |
		uint32(promotion)<<promoShift)
}

func NewNullMove() Move {
	return NewMove(0, 0, NoPiece, NullMove, NoPiece, NoPiece)
}

// NewPawnDouble builds a double pawn push, recording the en-passant square
// the push creates (the square jumped over).
func NewPawnDouble(from, to, epSquare Square) Move {
	m := NewMove(from, to, Pawn, PawnDouble, NoPiece, NoPiece)
	return m | Move(uint32(epSquare)<<epShift)
}

func (m Move) From() Square      { return Square(m >> fromShift & sixBitMask) }
func (m Move) To() Square        { return Square(m >> toShift & sixBitMask) }
func (m Move) Piece() Piece      { return Piece(m >> pieceShift & threeBitMask) }
func (m Move) Kind() MoveKind    { return MoveKind(m >> kindShift & fourBitMask) }
func (m Move) Captured() Piece   { return Piece(m >> captShift & threeBitMask) }
func (m Move) Promotion() Piece  { return Piece(m >> promoShift & threeBitMask) }
func (m Move) EPSquare() Square  { return Square(m >> epShift & sixBitMask) }
func (m Move) IsNull() bool      { return m.Kind() == NullMove }
func (m Move) IsNone() bool      { return m == NoMove }
func (m Move) IsCapture() bool   { return m.Kind().IsCapture() }
func (m Move) IsCastle() bool    { return m.Kind().IsCastle() }
func (m Move) IsPromotion() bool { return m.Kind().IsPromotion() }

func (m Move) Equals(other Move) bool {
	return m == other
}

// String renders the move in long algebraic notation, e.g. "e2e4", "e7e8q".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	var sb strings.Builder
	sb.WriteString(m.From().String())
	sb.WriteString(m.To().String())
	if p := m.Promotion(); p != NoPiece {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// ParseMove parses a move in pure algebraic notation ("e2e4", "a7a8q").
// It does not resolve legality or move kind; callers match the result
// against a legal-move list (see FindMove).
func ParseMove(str string) (from, to Square, promotion Piece, err error) {
	if len(str) < 4 || len(str) > 5 {
		return 0, 0, NoPiece, fmt.Errorf("invalid move: %v", str)
	}
	from, err = ParseSquareStr(str[0:2])
	if err != nil {
		return 0, 0, NoPiece, fmt.Errorf("invalid move %v: %w", str, err)
	}
	to, err = ParseSquareStr(str[2:4])
	if err != nil {
		return 0, 0, NoPiece, fmt.Errorf("invalid move %v: %w", str, err)
	}
	promotion = NoPiece
	if len(str) == 5 {
		p, ok := ParsePiece(rune(str[4]))
		if !ok {
			return 0, 0, NoPiece, fmt.Errorf("invalid promotion in move %v", str)
		}
		promotion = p
	}
	return from, to, promotion, nil
}
