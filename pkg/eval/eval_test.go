package eval_test

import (
	"strings"
	"testing"
	"unicode"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mirrorFEN flips a position vertically and swaps the colors (and the side
// to move), producing the color-swapped counterpart the evaluation must
// score identically from the mover's perspective. Castling and en-passant
// fields are assumed empty in the fixtures below.
func mirrorFEN(t *testing.T, f string) string {
	t.Helper()

	parts := strings.Split(f, " ")
	require.Len(t, parts, 6)

	ranks := strings.Split(parts[0], "/")
	require.Len(t, ranks, 8)

	swapped := make([]string, 8)
	for i, r := range ranks {
		var sb strings.Builder
		for _, ch := range r {
			switch {
			case unicode.IsUpper(ch):
				sb.WriteRune(unicode.ToLower(ch))
			case unicode.IsLower(ch):
				sb.WriteRune(unicode.ToUpper(ch))
			default:
				sb.WriteRune(ch)
			}
		}
		swapped[7-i] = sb.String()
	}

	turn := "w"
	if parts[1] == "w" {
		turn = "b"
	}
	return strings.Join([]string{strings.Join(swapped, "/"), turn, "-", "-", parts[4], parts[5]}, " ")
}

func TestEvaluateColorSwapSymmetry(t *testing.T) {
	fixtures := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"r4rk1/pp3ppp/2n1b3/2p5/4P3/2N2N2/PPP2PPP/R4RK1 w - - 0 1",
		"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
	}

	e := eval.NewClassical(1)
	for _, f := range fixtures {
		f := f
		t.Run(f, func(t *testing.T) {
			pos, _, _, _, err := fen.Decode(f)
			require.NoError(t, err)
			mirrored, _, _, _, err := fen.Decode(mirrorFEN(t, f))
			require.NoError(t, err)

			a := e.Evaluate(pos, eval.MinScore, eval.MaxScore)
			b := e.Evaluate(mirrored, eval.MinScore, eval.MaxScore)
			assert.Equal(t, a, b, "side-relative scores must agree for mirrored positions")
		})
	}
}

func TestPhaseOf(t *testing.T) {
	start, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	assert.Equal(t, 0, eval.PhaseOf(start), "full material is the opening phase")

	bare, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, eval.MaxPhase, eval.PhaseOf(bare), "bare kings are the endgame phase")

	pawnsOnly, _, _, _, err := fen.Decode("4k3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, eval.MaxPhase, eval.PhaseOf(pawnsOnly), "pawns do not count toward phase")
}

func TestMateScoreConventions(t *testing.T) {
	mate1 := eval.MateValue - 1
	assert.True(t, mate1.IsMateScore())
	m, ok := mate1.MateIn()
	require.True(t, ok)
	assert.Equal(t, 1, m)

	mated2 := -(eval.MateValue - 2)
	m, ok = mated2.MateIn()
	require.True(t, ok)
	assert.Equal(t, -1, m)

	assert.False(t, eval.Score(250).IsMateScore())
	_, ok = eval.Score(250).MateIn()
	assert.False(t, ok)
}

func TestScoreTTAdjustment(t *testing.T) {
	// A mate found 5 plies into the search, stored at ply 5 and probed
	// again at ply 3, must reconstruct the distance from the probing node.
	found := eval.MateValue - 8 // mate 8 plies from this node
	stored := eval.ScoreToTT(found, 5)
	reread := eval.ScoreFromTT(stored, 3)
	assert.Equal(t, eval.MateValue-6, reread)

	// Non-mate scores pass through unchanged.
	assert.Equal(t, eval.Score(42), eval.ScoreToTT(42, 17))
	assert.Equal(t, eval.Score(-42), eval.ScoreFromTT(-42, 17))
}

func TestDrawishEndingScaledDown(t *testing.T) {
	e := eval.NewClassical(1)

	// Opposite-colored bishops, one pawn each: heavily draw-scaled, so
	// the score must stay close to level despite the extra pawn.
	pos, _, _, _, err := fen.Decode("6k1/2b3p1/8/8/8/8/4BPP1/6K1 w - - 0 1")
	require.NoError(t, err)
	score := e.Evaluate(pos, eval.MinScore, eval.MaxScore)
	assert.Less(t, int(score), 100)
	assert.Greater(t, int(score), -100)
}
