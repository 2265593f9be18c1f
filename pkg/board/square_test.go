package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	assert.True(t, board.Rank1.IsValid())
	assert.True(t, board.Rank3.IsValid())
	assert.True(t, board.Rank8.IsValid())
	assert.False(t, board.Rank(8).IsValid())

	assert.Equal(t, board.Rank1.String(), "1")
	assert.Equal(t, board.Rank7.String(), "7")
	assert.Equal(t, board.Rank(4).String(), "5")
}

func TestFile(t *testing.T) {
	assert.True(t, board.FileA.IsValid())
	assert.True(t, board.FileB.IsValid())
	assert.True(t, board.FileH.IsValid())
	assert.False(t, board.File(8).IsValid())

	assert.Equal(t, board.FileA.String(), "a")
	assert.Equal(t, board.FileG.String(), "g")
	assert.Equal(t, board.File(3).String(), "d")
}

func TestSquare(t *testing.T) {
	assert.Equal(t, board.NewSquare(board.FileC, board.Rank2), board.NewSquare(board.FileC, board.Rank2))
	assert.Equal(t, board.H1, board.NewSquare(board.FileH, board.Rank1))
	assert.Equal(t, board.A8, board.NewSquare(board.FileA, board.Rank8))

	assert.True(t, board.H1.IsValid())
	assert.True(t, board.A8.IsValid())
	assert.False(t, board.Square(64).IsValid())

	assert.Equal(t, board.H1.String(), "h1")
	assert.Equal(t, board.A1.String(), "a1")
	assert.Equal(t, board.A8.String(), "a8")
	assert.Equal(t, board.Square(3).String(), "d8")

	sq, err := board.ParseSquareStr("e4")
	assert.NoError(t, err)
	assert.Equal(t, board.NewSquare(board.FileE, board.Rank4), sq)
	assert.Equal(t, "e4", sq.String())

	_, err = board.ParseSquareStr("z9")
	assert.Error(t, err)
}

func TestSquareFlip(t *testing.T) {
	assert.Equal(t, board.A1, board.A8.Flip())
	assert.Equal(t, board.H8, board.H1.Flip())
}
