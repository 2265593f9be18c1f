package search

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// quiescence extends the search along capture (and, while in check,
// check-evasion) lines until a quiet position is reached, per SPEC_FULL
// §4.7. Grounded on the teacher's quiescence.go stand-pat + capture
// recursion shape, reworked onto the mutable Position/packed Move API and
// extended with in-check evasions and SEE-based capture pruning. At its
// entry ply only (qsPly == 0) it additionally tries quiet checking moves,
// bounded to one ply so the extension cannot explode.
func (t *Thread) quiescence(ply, qsPly int, alpha, beta eval.Score) eval.Score {
	t.Nodes++
	if t.Nodes&t.nodeMask == 0 && t.checkAbort() {
		return alpha
	}
	if ply > t.SelDepth {
		t.SelDepth = ply
	}
	if ply >= MaxPly-1 {
		return t.Eval.Evaluate(t.Pos, alpha, beta)
	}

	us := t.Pos.Turn()
	inCheck := t.Pos.IsChecked(us)

	var best eval.Score
	if !inCheck {
		// Stand-pat: the side to move always has the option to play a
		// quiet move instead, so the static eval is a lower bound.
		best = t.Eval.Evaluate(t.Pos, alpha, beta)
		if best >= beta {
			return best
		}
		if best > alpha {
			alpha = best
		}
	} else {
		best = eval.MinScore
	}

	var moves board.MoveList
	if inCheck {
		board.GenerateEvasions(t.Pos, &moves)
	} else {
		pins := board.FindPins(t.Pos, us)
		board.GenerateCaptures(t.Pos, pins, &moves)
		if qsPly == 0 {
			board.GenerateQuietChecks(t.Pos, pins, &moves)
		}
	}

	list := moves.Slice()
	orderMoves(t.Pos, list, board.NoMove, ply, us, board.NoMove, us.Opponent(), &t.Killers, &t.History, &t.Counters)

	for _, m := range list {
		if !inCheck && !m.IsPromotion() && board.SEE(t.Pos, m) < 0 {
			continue // delta-pruning via SEE, per SPEC_FULL §4.7
		}

		t.Pos.Make(m)
		score := -t.quiescence(ply+1, qsPly+1, -beta, -alpha)
		t.Pos.Undo()

		if score > best {
			best = score
			if score > alpha {
				alpha = score
				if score >= beta {
					return best
				}
			}
		}
	}

	if inCheck && len(list) == 0 {
		return eval.Crop(-eval.MateValue + eval.Score(ply))
	}

	return best
}
