package board

// Move generation: three entry points (GenerateQuiet, GenerateCaptures,
// GenerateEvasions) producing legal moves, backed by a pin bitboard and a
// cheap single-test legality check (IsLegal) reused to validate
// out-of-band move hints (transposition-table move, killers, counter-
// moves) against the current position before they are tried.
//
// Grounded on the bitboard-walking shape of AdamGriffiths31/ChessEngine's
// move generator and treepeck/chego's movegen for evasion enumeration
// structure; pin detection follows herohde/morlock's pkg/eval/pins.go
// X-ray technique, generalized to the packed Move/magic-bitboard types.

// FindPins returns the bitboard of side's own pieces pinned against its
// king by an enemy slider.
func FindPins(pos *Position, side Color) Bitboard {
	kingSq := pos.KingSquare(side)
	opp := side.Opponent()
	occ := pos.All()
	own := pos.Colored(side)

	var pinned Bitboard
	pinned |= pinnedAlong(kingSq, occ, own, RookAttacks, pos.Piece(opp, Rook)|pos.Piece(opp, Queen))
	pinned |= pinnedAlong(kingSq, occ, own, BishopAttacks, pos.Piece(opp, Bishop)|pos.Piece(opp, Queen))
	return pinned
}

func pinnedAlong(kingSq Square, occ, own Bitboard, attacks func(Square, Bitboard) Bitboard, sliders Bitboard) Bitboard {
	xray := attacks(kingSq, occ&^own) & sliders
	var pinned Bitboard
	for xray != 0 {
		sq := xray.PopLSB()
		between := fromToPath(kingSq, sq) & occ
		if between.PopCount() == 1 && between&own != 0 {
			pinned |= between
		}
	}
	return pinned
}

// fromToPath returns the squares strictly between a and b if they are
// collinear rook-wise or bishop-wise, else 0.
func fromToPath(a, b Square) Bitboard {
	af, ar := int(a.File()), int(a.Rank())
	bf, br := int(b.File()), int(b.Rank())
	df, dr := sign(bf-af), sign(br-ar)
	if df == 0 && dr == 0 {
		return 0
	}
	if df != 0 && dr != 0 && abs(bf-af) != abs(br-ar) {
		return 0
	}
	var bb Bitboard
	f, r := af+df, ar+dr
	for f != bf || r != br {
		bb |= BitMask(NewSquare(File(f), Rank(r)))
		f += df
		r += dr
	}
	return bb
}

// IsAligned reports whether three squares are collinear (rank, file, or diagonal).
func IsAligned(a, b, c Square) bool {
	af, ar := int(a.File()), int(a.Rank())
	bf, br := int(b.File()), int(b.Rank())
	cf, cr := int(c.File()), int(c.Rank())
	return (bf-af)*(cr-ar) == (br-ar)*(cf-af)
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsLegal is the cheap single test used both internally by generation (for
// pinned-piece quiet/capture moves) and externally to validate a move hint
// (TT move, killer, counter-move) against the position before it is tried.
func IsLegal(pos *Position, pins Bitboard, m Move) bool {
	us := pos.Turn()
	if m.Piece() == King {
		if m.IsCastle() {
			return castlePathClear(pos, m)
		}
		occWithoutKing := pos.All() &^ BitMask(m.From())
		return !isAttackedWithOcc(pos, us.Opponent(), m.To(), occWithoutKing)
	}
	if m.Kind() == EnPassantCapture {
		return enPassantLegal(pos, m)
	}
	if pins.IsSet(m.From()) {
		return IsAligned(pos.KingSquare(us), m.From(), m.To())
	}
	return true
}

func isAttackedWithOcc(pos *Position, c Color, sq Square, occ Bitboard) bool {
	if KnightAttackboard(sq)&pos.Piece(c, Knight) != 0 {
		return true
	}
	if KingAttackboard(sq)&pos.Piece(c, King) != 0 {
		return true
	}
	if PawnCaptureboard(c.Opponent(), BitMask(sq))&pos.Piece(c, Pawn) != 0 {
		return true
	}
	if RookAttacks(sq, occ)&(pos.Piece(c, Rook)|pos.Piece(c, Queen)) != 0 {
		return true
	}
	if BishopAttacks(sq, occ)&(pos.Piece(c, Bishop)|pos.Piece(c, Queen)) != 0 {
		return true
	}
	return false
}

func enPassantLegal(pos *Position, m Move) bool {
	us := pos.Turn()
	them := us.Opponent()
	capSq := epCaptureSquare(us, m.To())
	occ := pos.All()
	occ &^= BitMask(m.From())
	occ &^= BitMask(capSq)
	occ |= BitMask(m.To())
	return !isAttackedWithOcc(pos, them, pos.KingSquare(us), occ)
}

func castlePathClear(pos *Position, m Move) bool {
	us := pos.Turn()
	them := us.Opponent()
	var crossed []Square
	switch m.Kind() {
	case CastleWhiteKingSide:
		crossed = []Square{E1, F1, G1}
	case CastleWhiteQueenSide:
		crossed = []Square{E1, D1, C1}
	case CastleBlackKingSide:
		crossed = []Square{E8, F8, G8}
	case CastleBlackQueenSide:
		crossed = []Square{E8, D8, C8}
	}
	for _, sq := range crossed {
		if pos.IsAttacked(them, sq) {
			return false
		}
	}
	return true
}

// MoveList is a fixed-capacity buffer moves are appended to during
// generation, avoiding per-call heap allocation in hot search loops.
type MoveList struct {
	Moves [256]Move
	N     int
}

func (l *MoveList) Add(m Move) {
	l.Moves[l.N] = m
	l.N++
}

func (l *MoveList) Slice() []Move {
	return l.Moves[:l.N]
}

// GenerateQuiet appends all legal non-capturing moves (including castles)
// for the side to move. Only valid when the side to move is not in check;
// use GenerateEvasions otherwise.
func GenerateQuiet(pos *Position, pins Bitboard, out *MoveList) {
	us := pos.Turn()
	empty := ^pos.All()

	genPawnQuiet(pos, pins, out)

	for _, piece := range [...]Piece{Knight, Bishop, Rook, Queen} {
		bb := pos.Piece(us, piece)
		for bb != 0 {
			from := bb.PopLSB()
			targets := Attackboard(pos.All(), from, piece) & empty
			for targets != 0 {
				to := targets.PopLSB()
				m := NewMove(from, to, piece, Quiet, NoPiece, NoPiece)
				if IsLegal(pos, pins, m) {
					out.Add(m)
				}
			}
		}
	}

	kingSq := pos.KingSquare(us)
	targets := KingAttackboard(kingSq) & empty
	for targets != 0 {
		to := targets.PopLSB()
		m := NewMove(kingSq, to, King, Quiet, NoPiece, NoPiece)
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}

	genCastles(pos, out)
}

func genCastles(pos *Position, out *MoveList) {
	us := pos.Turn()
	empty := ^pos.All()
	if us == White {
		if pos.Castling().IsAllowed(WhiteKingSideCastle) && empty.IsSet(F1) && empty.IsSet(G1) {
			m := NewMove(E1, G1, King, CastleWhiteKingSide, NoPiece, NoPiece)
			if IsLegal(pos, 0, m) {
				out.Add(m)
			}
		}
		if pos.Castling().IsAllowed(WhiteQueenSideCastle) && empty.IsSet(D1) && empty.IsSet(C1) && empty.IsSet(B1) {
			m := NewMove(E1, C1, King, CastleWhiteQueenSide, NoPiece, NoPiece)
			if IsLegal(pos, 0, m) {
				out.Add(m)
			}
		}
	} else {
		if pos.Castling().IsAllowed(BlackKingSideCastle) && empty.IsSet(F8) && empty.IsSet(G8) {
			m := NewMove(E8, G8, King, CastleBlackKingSide, NoPiece, NoPiece)
			if IsLegal(pos, 0, m) {
				out.Add(m)
			}
		}
		if pos.Castling().IsAllowed(BlackQueenSideCastle) && empty.IsSet(D8) && empty.IsSet(C8) && empty.IsSet(B8) {
			m := NewMove(E8, C8, King, CastleBlackQueenSide, NoPiece, NoPiece)
			if IsLegal(pos, 0, m) {
				out.Add(m)
			}
		}
	}
}

func genPawnQuiet(pos *Position, pins Bitboard, out *MoveList) {
	us := pos.Turn()
	pawns := pos.Piece(us, Pawn)
	promoRank := PawnPromotionRank(us)

	singles := PawnMoveboard(pos.All(), us, pawns)
	for targets := singles &^ promoRank; targets != 0; {
		to := targets.PopLSB()
		from := pawnMoveOrigin(us, to, 1)
		m := NewMove(from, to, Pawn, Quiet, NoPiece, NoPiece)
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}
	for targets := singles & promoRank; targets != 0; {
		to := targets.PopLSB()
		from := pawnMoveOrigin(us, to, 1)
		for _, pp := range [...]Piece{Queen, Rook, Bishop, Knight} {
			m := NewMove(from, to, Pawn, Promotion, NoPiece, pp)
			if IsLegal(pos, pins, m) {
				out.Add(m)
			}
		}
	}

	jumpRank := PawnJumpRank(us)
	doubles := PawnMoveboard(pos.All(), us, singles&^promoRank) & jumpRank
	for doubles != 0 {
		to := doubles.PopLSB()
		from := pawnMoveOrigin(us, to, 2)
		epSq := pawnMoveOrigin(us, to, 1)
		m := NewPawnDouble(from, to, epSq)
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}
}

// pawnMoveOrigin returns the square `steps` single-pushes behind `to` for
// the given color (steps=1 or 2).
func pawnMoveOrigin(c Color, to Square, steps int) Square {
	if c == White {
		return to + Square(8*steps)
	}
	return to - Square(8*steps)
}

// GenerateCaptures appends all legal captures, capture-promotions, and
// en-passant captures for the side to move. Non-capturing promotions are
// not generated here; GenerateQuiet emits them.
func GenerateCaptures(pos *Position, pins Bitboard, out *MoveList) {
	us := pos.Turn()
	them := us.Opponent()
	enemy := pos.Colored(them)

	genPawnCaptures(pos, pins, out)

	for _, piece := range [...]Piece{Knight, Bishop, Rook, Queen} {
		bb := pos.Piece(us, piece)
		for bb != 0 {
			from := bb.PopLSB()
			targets := Attackboard(pos.All(), from, piece) & enemy
			for targets != 0 {
				to := targets.PopLSB()
				_, capturedPiece, _ := pos.Square(to)
				m := NewMove(from, to, piece, Capture, capturedPiece, NoPiece)
				if IsLegal(pos, pins, m) {
					out.Add(m)
				}
			}
		}
	}

	kingSq := pos.KingSquare(us)
	targets := KingAttackboard(kingSq) & enemy
	for targets != 0 {
		to := targets.PopLSB()
		_, capturedPiece, _ := pos.Square(to)
		m := NewMove(kingSq, to, King, Capture, capturedPiece, NoPiece)
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}
}

func genPawnCaptures(pos *Position, pins Bitboard, out *MoveList) {
	us := pos.Turn()
	them := us.Opponent()
	pawns := pos.Piece(us, Pawn)
	enemy := pos.Colored(them)
	promoRank := PawnPromotionRank(us)

	attacks := PawnCaptureboard(us, pawns) & enemy
	for targets := attacks &^ promoRank; targets != 0; {
		to := targets.PopLSB()
		for _, from := range pawnAttackOrigins(us, to, pawns) {
			_, capturedPiece, _ := pos.Square(to)
			m := NewMove(from, to, Pawn, Capture, capturedPiece, NoPiece)
			if IsLegal(pos, pins, m) {
				out.Add(m)
			}
		}
	}
	for targets := attacks & promoRank; targets != 0; {
		to := targets.PopLSB()
		_, capturedPiece, _ := pos.Square(to)
		for _, from := range pawnAttackOrigins(us, to, pawns) {
			for _, pp := range [...]Piece{Queen, Rook, Bishop, Knight} {
				m := NewMove(from, to, Pawn, CapturePromotion, capturedPiece, pp)
				if IsLegal(pos, pins, m) {
					out.Add(m)
				}
			}
		}
	}

	if epSq, ok := pos.EnPassant(); ok {
		for _, from := range pawnAttackOrigins(us, epSq, pawns) {
			m := NewMove(from, epSq, Pawn, EnPassantCapture, Pawn, NoPiece)
			if IsLegal(pos, pins, m) {
				out.Add(m)
			}
		}
	}
}

// pawnAttackOrigins returns the (up to 2) own-pawn squares that attack to.
func pawnAttackOrigins(us Color, to Square, pawns Bitboard) []Square {
	var origins []Square
	candidates := PawnCaptureboard(us.Opponent(), BitMask(to)) & pawns
	for candidates != 0 {
		origins = append(origins, candidates.PopLSB())
	}
	return origins
}

// GenerateEvasions appends all legal moves when the side to move is in
// check: king moves, captures of the (single) checker, and interpositions
// against a single checking slider. Under double check only king moves
// are produced.
func GenerateEvasions(pos *Position, out *MoveList) {
	us := pos.Turn()
	them := us.Opponent()
	kingSq := pos.KingSquare(us)

	checkers := attackersOf(pos, them, kingSq)
	pins := FindPins(pos, us)

	empty := ^pos.All()
	kingTargets := KingAttackboard(kingSq) & (empty | pos.Colored(them))
	for kingTargets != 0 {
		to := kingTargets.PopLSB()
		var m Move
		if pos.IsEmpty(to) {
			m = NewMove(kingSq, to, King, Quiet, NoPiece, NoPiece)
		} else {
			_, capturedPiece, _ := pos.Square(to)
			m = NewMove(kingSq, to, King, Capture, capturedPiece, NoPiece)
		}
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}

	if checkers.PopCount() != 1 {
		return // double check: only king moves are legal
	}
	checkerSq := checkers.LastPopSquare()
	_, checkerPiece, _ := pos.Square(checkerSq)

	blockSquares := BitMask(checkerSq)
	if isSlider(checkerPiece) {
		blockSquares |= fromToPath(kingSq, checkerSq)
	}

	var captures, quiets MoveList
	GenerateCaptures(pos, pins, &captures)
	for _, m := range captures.Slice() {
		if m.Piece() != King && blockSquares.IsSet(m.To()) {
			out.Add(m)
		}
		if m.Kind() == EnPassantCapture && epCaptureSquare(us, m.To()) == checkerSq {
			out.Add(m)
		}
	}
	GenerateQuiet(pos, pins, &quiets)
	for _, m := range quiets.Slice() {
		if m.Piece() != King && blockSquares.IsSet(m.To()) {
			out.Add(m)
		}
	}
}

func isSlider(p Piece) bool {
	return p == Bishop || p == Rook || p == Queen
}

// GenerateQuietChecks appends legal non-capturing moves that give check:
// direct checks (a knight, slider, or pawn push landing on a square from
// which it attacks the enemy king) and discovered checks (a piece stepping
// off the line between a friendly slider and the enemy king). Consumed by
// quiescence at its first ply to resolve quiet checking threats before
// standing pat.
func GenerateQuietChecks(pos *Position, pins Bitboard, out *MoveList) {
	us := pos.Turn()
	them := us.Opponent()
	kingSq := pos.KingSquare(them)
	occ := pos.All()
	empty := ^occ

	discovered := discoveredCandidates(pos, us, kingSq)

	for _, piece := range [...]Piece{Knight, Bishop, Rook, Queen} {
		checkSqs := checkSquares(kingSq, occ, piece)
		bb := pos.Piece(us, piece)
		for bb != 0 {
			from := bb.PopLSB()
			targets := Attackboard(occ, from, piece) & empty
			if discovered.IsSet(from) {
				// Any step off the slider's line uncovers check; staying
				// aligned with the enemy king keeps the block intact.
				filtered := EmptyBitboard
				for t := targets; t != 0; {
					to := t.PopLSB()
					if !IsAligned(kingSq, from, to) || checkSqs.IsSet(to) {
						filtered |= BitMask(to)
					}
				}
				targets = filtered
			} else {
				targets &= checkSqs
			}
			for targets != 0 {
				to := targets.PopLSB()
				m := NewMove(from, to, piece, Quiet, NoPiece, NoPiece)
				if IsLegal(pos, pins, m) {
					out.Add(m)
				}
			}
		}
	}

	genPawnQuietChecks(pos, pins, discovered, kingSq, out)

	if from := pos.KingSquare(us); discovered.IsSet(from) {
		targets := KingAttackboard(from) & empty
		for targets != 0 {
			to := targets.PopLSB()
			if IsAligned(kingSq, from, to) {
				continue
			}
			m := NewMove(from, to, King, Quiet, NoPiece, NoPiece)
			if IsLegal(pos, pins, m) {
				out.Add(m)
			}
		}
	}
}

// checkSquares returns the squares from which the given piece kind would
// attack kingSq under the current occupancy.
func checkSquares(kingSq Square, occ Bitboard, piece Piece) Bitboard {
	switch piece {
	case Knight:
		return KnightAttackboard(kingSq)
	case Bishop:
		return BishopAttacks(kingSq, occ)
	case Rook:
		return RookAttacks(kingSq, occ)
	case Queen:
		return RookAttacks(kingSq, occ) | BishopAttacks(kingSq, occ)
	default:
		return 0
	}
}

// discoveredCandidates returns side's pieces sitting alone on the line
// between a friendly slider and the enemy king, i.e. pieces whose movement
// off that line gives a discovered check.
func discoveredCandidates(pos *Position, us Color, enemyKing Square) Bitboard {
	occ := pos.All()
	own := pos.Colored(us)

	var candidates Bitboard
	for _, g := range [...]struct {
		attacks func(Square, Bitboard) Bitboard
		sliders Bitboard
	}{
		{RookAttacks, pos.Piece(us, Rook) | pos.Piece(us, Queen)},
		{BishopAttacks, pos.Piece(us, Bishop) | pos.Piece(us, Queen)},
	} {
		xray := g.attacks(enemyKing, occ&^own) & g.sliders
		for xray != 0 {
			sq := xray.PopLSB()
			between := fromToPath(enemyKing, sq) & occ
			if between.PopCount() == 1 && between&own != 0 {
				candidates |= between
			}
		}
	}
	return candidates
}

func genPawnQuietChecks(pos *Position, pins, discovered Bitboard, kingSq Square, out *MoveList) {
	us := pos.Turn()
	them := us.Opponent()
	pawns := pos.Piece(us, Pawn)
	promoRank := PawnPromotionRank(us)

	directSqs := PawnCaptureboard(them, BitMask(kingSq))
	singles := PawnMoveboard(pos.All(), us, pawns) &^ promoRank
	doubles := PawnMoveboard(pos.All(), us, singles) & PawnJumpRank(us)

	for targets := singles; targets != 0; {
		to := targets.PopLSB()
		from := pawnMoveOrigin(us, to, 1)
		if !directSqs.IsSet(to) && !(discovered.IsSet(from) && !IsAligned(kingSq, from, to)) {
			continue
		}
		m := NewMove(from, to, Pawn, Quiet, NoPiece, NoPiece)
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}
	for targets := doubles; targets != 0; {
		to := targets.PopLSB()
		from := pawnMoveOrigin(us, to, 2)
		if !directSqs.IsSet(to) && !(discovered.IsSet(from) && !IsAligned(kingSq, from, to)) {
			continue
		}
		m := NewPawnDouble(from, to, pawnMoveOrigin(us, to, 1))
		if IsLegal(pos, pins, m) {
			out.Add(m)
		}
	}
}

// attackersOf returns all squares holding a piece of color c that attacks sq.
func attackersOf(pos *Position, c Color, sq Square) Bitboard {
	var attackers Bitboard
	attackers |= KnightAttackboard(sq) & pos.Piece(c, Knight)
	attackers |= KingAttackboard(sq) & pos.Piece(c, King)
	attackers |= PawnCaptureboard(c.Opponent(), BitMask(sq)) & pos.Piece(c, Pawn)
	attackers |= RookAttacks(sq, pos.All()) & (pos.Piece(c, Rook) | pos.Piece(c, Queen))
	attackers |= BishopAttacks(sq, pos.All()) & (pos.Piece(c, Bishop) | pos.Piece(c, Queen))
	return attackers
}

// GenerateLegalMoves is the convenience entry point used by perft and
// tests: dispatches to evasions or quiet+captures depending on check.
func GenerateLegalMoves(pos *Position, out *MoveList) {
	us := pos.Turn()
	if pos.IsChecked(us) {
		GenerateEvasions(pos, out)
		return
	}
	pins := FindPins(pos, us)
	GenerateCaptures(pos, pins, out)
	GenerateQuiet(pos, pins, out)
}

// FindMove locates the generated legal move matching from/to/promotion,
// used to resolve a UCI move string against the current position.
func FindMove(pos *Position, from, to Square, promotion Piece) (Move, bool) {
	var list MoveList
	GenerateLegalMoves(pos, &list)
	for _, m := range list.Slice() {
		if m.From() == from && m.To() == to && (m.Promotion() == promotion || (!m.IsPromotion() && promotion == NoPiece)) {
			return m, true
		}
	}
	return NoMove, false
}
