// Package search implements principal-variation alpha-beta search over a
// bitboard position: null-move pruning, late-move reductions, razoring,
// futility pruning, singular extensions, quiescence, and a shared
// transposition table enabling lazy-SMP search across worker threads.
package search

import (
	"math"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// razorMargin/staticNullMargin are depth-indexed pruning margins for the
// whole-node pruning techniques of SPEC_FULL §4.6 step 6; the futility
// margin of step 8 is computed inline in the move loop. Coarse, hand-tuned constants in the
// style of the classical engines this spec is distilled from; not derived
// from any single example file.
func razorMargin(depth int) eval.Score      { return eval.Score(200 + 150*depth) }
func staticNullMargin(depth int) eval.Score { return eval.Score(120 * depth) }

// lmrTable[depth][moveIndex] is the log-log-scaled late-move reduction,
// computed once at package init rather than per node.
var lmrTable [64][64]int

// badHistoryRate is the cutoff rate (scaled by 1024, see History.rate)
// below which a quiet move is considered to have bad history, earning an
// extra ply of reduction.
const badHistoryRate = 64

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := 0.4 + math.Log(float64(d))*math.Log(float64(m))/2.2
			if r < 0 {
				r = 0
			}
			lmrTable[d][m] = int(r)
		}
	}
}

// node runs the recursive PVS search at any node, root included, implementing every
// heuristic of SPEC_FULL §4.6. ply is distance from the search root;
// depth is remaining depth. Returns a fail-soft score in [alpha,beta]'s
// side-to-move-relative convention (negamax).
func (t *Thread) node(ply, depth int, alpha, beta eval.Score, isPV, cutNode bool, excluded board.Move) eval.Score {
	t.Nodes++
	if t.Nodes&t.nodeMask == 0 && t.checkAbort() {
		return alpha
	}
	t.pv.clear(ply)

	pos := t.Pos
	us := pos.Turn()
	inCheck := pos.IsChecked(us)

	// 1. Draw checks (SPEC_FULL §4.6 step 1). Twofold/contracted repetition
	// per DESIGN.md divergence #5, not FIDE threefold.
	if ply > 0 {
		if pos.IsFiftyMoveDraw() || pos.IsRepetition() || pos.IsInsufficientMaterial() {
			return eval.DrawScore
		}
	}

	if depth <= 0 && !inCheck {
		return t.quiescence(ply, 0, alpha, beta)
	}
	if ply >= MaxPly-1 {
		return t.Eval.Evaluate(pos, alpha, beta)
	}

	// 2. Mate-distance pruning.
	if ply > 0 {
		alpha = eval.Max(alpha, eval.Crop(-eval.MateValue+eval.Score(ply)))
		beta = eval.Min(beta, eval.Crop(eval.MateValue-eval.Score(ply)))
		if alpha >= beta {
			return alpha
		}
	}

	// 3. Transposition probe.
	var ttMove board.Move
	key := pos.Key()
	if bound, ttDepth, ttScore, ttStaticEval, move, ok := t.TT.Read(key); ok {
		ttMove = move
		if !isPV && ttDepth >= depth && excluded.IsNone() {
			score := eval.ScoreFromTT(ttScore, ply)
			switch bound {
			case ExactBound:
				return score
			case LowerBound:
				if score >= beta {
					return score
				}
			case UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
		_ = ttStaticEval
	}

	// 4. Tablebase probe: non-root, non-PV, non-singular nodes only. A hit
	// is passed through ScoreToTT (which leaves ±EGTBWin unchanged), stored
	// with no move under the bound its value sets against the window, and
	// returned.
	if ply > 0 && !isPV && excluded.IsNone() {
		if score, ok := t.TB.load().Probe(pos); ok {
			t.TBHits++
			adjusted := eval.ScoreToTT(score, ply)
			var bound Bound
			switch {
			case adjusted >= beta:
				bound = LowerBound
			case adjusted <= alpha:
				bound = UpperBound
			default:
				bound = ExactBound
			}
			t.TT.Write(key, bound, depth, adjusted, 0, board.NoMove)
			if bound == ExactBound || (bound == LowerBound && adjusted >= beta) || (bound == UpperBound && adjusted <= alpha) {
				return adjusted
			}
		}
	}

	// 5. Static evaluation, cached for the "improving" comparison two
	// plies back.
	var staticEval eval.Score
	switch {
	case inCheck:
		staticEval = eval.MinScore
	case !excluded.IsNone():
		staticEval = t.evalStack[ply]
	default:
		staticEval = t.Eval.Evaluate(pos, eval.MinScore, eval.MaxScore)
	}
	t.evalStack[ply] = staticEval
	improving := !inCheck && ply >= 2 && staticEval > t.evalStack[ply-2]

	// 6. Whole-node pruning: skipped at PV nodes, in check, and singular
	// probes (excluded != NoMove).
	if !isPV && !inCheck && excluded.IsNone() {
		// Razoring.
		if depth < 6 && staticEval+razorMargin(depth) < alpha {
			score := t.quiescence(ply, 0, alpha-1, alpha)
			if score < alpha {
				return score
			}
		}

		// Static null-move pruning.
		if depth < 4 && staticEval-staticNullMargin(depth) >= beta && !beta.IsMateScore() {
			return staticEval - staticNullMargin(depth)
		}

		// Null-move pruning: requires non-pawn material and no immediately
		// preceding null move at this node's parent.
		lastWasNull := false
		if m, _, ok := pos.LastMove(); ok {
			lastWasNull = m.IsNull()
		}
		if depth >= 3 && staticEval >= beta && !lastWasNull && hasNonPawnMaterial(pos, us) {
			r := 4 + depth/4
			if d := int((staticEval - beta) / 200); d < 3 {
				r += d
			} else {
				r += 3
			}
			pos.Make(board.NewNullMove())
			score := -t.node(ply+1, depth-1-r, -beta, -beta+1, false, !cutNode, board.NoMove)
			pos.Undo()
			if score >= beta {
				if score >= eval.MateValue-eval.Score(MaxPly) {
					score = beta // never report an unproven mate from a reduced-depth null search
				}
				return score
			}
		}

		// ProbCut: verify captures whose SEE + eval clears beta by a
		// margin with a reduced-depth search.
		if depth >= 5 && !beta.IsMateScore() {
			var caps board.MoveList
			pins := board.FindPins(pos, us)
			board.GenerateCaptures(pos, pins, &caps)
			probBeta := beta + 100
			for _, m := range caps.Slice() {
				if eval.Score(board.SEE(pos, m))+staticEval < probBeta {
					continue
				}
				pos.Make(m)
				score := -t.node(ply+1, depth-4, -probBeta, -probBeta+1, false, true, board.NoMove)
				pos.Undo()
				if score >= probBeta {
					return score
				}
			}
		}
	}

	// 7. Internal iterative reduction.
	if ttMove.IsNone() && !inCheck && depth > 1 {
		depth--
	}

	// 8. Move loop.
	var moves board.MoveList
	if inCheck {
		board.GenerateEvasions(pos, &moves)
	} else {
		pins := board.FindPins(pos, us)
		board.GenerateCaptures(pos, pins, &moves)
		var quiets board.MoveList
		board.GenerateQuiet(pos, pins, &quiets)
		for _, m := range quiets.Slice() {
			moves.Add(m)
		}
	}
	list := moves.Slice()

	prevMove, prevColor := board.NoMove, us
	if ply > 0 {
		prevMove, prevColor = lastMadeMove(pos)
	}
	orderMoves(pos, list, ttMove, ply, us, prevMove, prevColor, &t.Killers, &t.History, &t.Counters)

	if len(list) == 0 {
		if inCheck {
			return eval.Crop(-eval.MateValue + eval.Score(ply))
		}
		return eval.DrawScore
	}

	var (
		bestScore     = eval.MinScore
		bestMove      board.Move
		legalCount    int
		quietsTried   []board.Move
		alphaOrig     = alpha
		improvedAlpha bool
	)

	for idx, m := range list {
		if m == excluded {
			continue
		}
		legalCount++
		isQuiet := !m.IsCapture() && !m.IsPromotion()
		gives := moveGivesCheck(pos, m)

		extension := 0
		if gives && (board.SEE(pos, m) >= 0 || depth < 4) {
			extension = 1
		}

		// Singular extension: only at sufficiently deep PV nodes, on the
		// TT move, when the stored bound supports it.
		if isPV && depth >= 8 && m == ttMove && extension == 0 {
			if bound, ttDepth, ttScore, _, _, ok := t.TT.Read(key); ok && bound != UpperBound && ttDepth >= depth-3 {
				margin := eval.Score(4 * depth)
				singularBeta := eval.ScoreFromTT(ttScore, ply) - margin
				score := t.node(ply, (depth-1)/2, singularBeta-1, singularBeta, false, cutNode, m)
				if score < singularBeta {
					extension = 1
				}
			}
		}

		// Move-count / late-move pruning for quiets once behind.
		if !isPV && !inCheck && isQuiet && legalCount > 1 {
			threshold := 4 + depth*depth
			if !improving {
				threshold /= 2
			}
			if legalCount > threshold && staticEval+eval.Score(100) < alpha {
				continue
			}
			// Futility pruning.
			if depth <= 6 && staticEval+eval.Score(depth)*(50+eval.Score(t.History.score(us, m))/8) < alpha {
				continue
			}
		}

		pos.Make(m)

		newDepth := depth - 1 + extension

		var score eval.Score
		switch {
		case legalCount == 1:
			score = -t.node(ply+1, newDepth, -beta, -alpha, isPV, false, board.NoMove)
		default:
			reduction := 0
			if depth > 2 && idx >= 3 && isQuiet && !inCheck {
				d, mi := depth, idx
				if d >= 64 {
					d = 63
				}
				if mi >= 64 {
					mi = 63
				}
				reduction = lmrTable[d][mi]
				if !improving {
					reduction++
				}
				if t.History.score(us, m) < badHistoryRate {
					reduction++
				}
				if reduction < 0 {
					reduction = 0
				}
				if newDepth-reduction < 1 {
					reduction = newDepth - 1
				}
			}

			score = -t.node(ply+1, newDepth-reduction, -alpha-1, -alpha, false, true, board.NoMove)
			if score > alpha && reduction > 0 {
				score = -t.node(ply+1, newDepth, -alpha-1, -alpha, false, true, board.NoMove)
			}
			if score > alpha && score < beta {
				score = -t.node(ply+1, newDepth, -beta, -alpha, true, false, board.NoMove)
			}
		}

		pos.Undo()

		if isQuiet {
			quietsTried = append(quietsTried, m)
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				improvedAlpha = true
				t.pv.update(ply, m, &t.pv)
				if score >= beta {
					if isQuiet {
						t.onBetaCutoff(ply, us, m, quietsTried, prevMove, prevColor)
					}
					break
				}
			}
		}
	}

	if legalCount == 0 {
		if !excluded.IsNone() {
			return alphaOrig // singular probe found no alternative legal move
		}
		if inCheck {
			return eval.Crop(-eval.MateValue + eval.Score(ply))
		}
		return eval.DrawScore
	}

	// 9. Store to transposition table. Skipped once abort is set: scores
	// from a cut-short subtree are not bounds of anything.
	if excluded.IsNone() && !t.abort.Load() {
		var bound Bound
		switch {
		case bestScore >= beta:
			bound = LowerBound
		case improvedAlpha:
			bound = ExactBound
		default:
			bound = UpperBound
		}
		t.TT.Write(key, bound, depth, eval.ScoreToTT(bestScore, ply), staticEval, bestMove)
	}

	return bestScore
}

// onBetaCutoff updates killers/history/counter-moves after a quiet move
// causes a beta cutoff, per SPEC_FULL §4.4's post-cutoff update rule:
// every quiet tried gets its searched counter bumped, the cutoff move also
// gets its cutoff counter bumped, is promoted into the killer slot, and is
// recorded as the counter-move to the move that was just made at the
// parent node.
func (t *Thread) onBetaCutoff(ply int, us board.Color, cutoff board.Move, quietsTried []board.Move, prevMove board.Move, prevColor board.Color) {
	for _, m := range quietsTried {
		t.History.onSearched(us, m)
	}
	t.History.onCutoff(us, cutoff)
	t.Killers.promote(ply, us, cutoff)
	t.Counters.set(prevMove, prevColor, cutoff)
}

func hasNonPawnMaterial(pos *board.Position, c board.Color) bool {
	return pos.Piece(c, board.Knight) != 0 || pos.Piece(c, board.Bishop) != 0 ||
		pos.Piece(c, board.Rook) != 0 || pos.Piece(c, board.Queen) != 0
}

// moveGivesCheck reports whether m, once made, leaves the opponent in
// check. SPEC_FULL §4.3 calls for precomputing this before making the
// move; in practice the move loop already makes the move to search its
// subtree, so it is cheaper and just as correct to make/test/undo here
// once up front for the extension decision.
func moveGivesCheck(pos *board.Position, m board.Move) bool {
	pos.Make(m)
	gives := pos.IsChecked(pos.Turn())
	pos.Undo()
	return gives
}

// lastMadeMove recovers the move made to reach the current position, used
// to key the counter-move table. Returns NoMove at the search root.
func lastMadeMove(pos *board.Position) (board.Move, board.Color) {
	m, c, _ := pos.LastMove()
	return m, c
}
