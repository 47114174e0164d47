package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave the
// side-to-move's king in check; legality is filtered separately).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates all legal capture/promotion moves, for
// quiescence search.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml)
	return p.filterLegalMoves(ml)
}

// generateAllMoves produces every pseudo-legal move in the fixed emission
// order §4.4 requires: pawn captures, pawn quiets, pawn promotions,
// en-passant, then rook/knight/bishop/queen captures-then-quiets (each
// piece type fully emitted before the next), then king, finally castles.
// perft node counts depend only on the set of moves emitted, not on this
// order.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnCaptures(ml, us, enemies)
	p.generatePawnQuiets(ml, us, occupied)
	p.generatePawnPromotions(ml, us, enemies, occupied)
	p.generateEnPassant(ml, us)

	p.generateSliderMoves(ml, Rook, us, enemies, occupied)
	p.generateSliderMoves(ml, Knight, us, enemies, occupied)
	p.generateSliderMoves(ml, Bishop, us, enemies, occupied)
	p.generateSliderMoves(ml, Queen, us, enemies, occupied)

	p.generateKingCapturesThenQuiets(ml, us, enemies)
	p.generateCastlingMoves(ml, us)
}

// generateSliderMoves emits a piece type's captures, then its quiets.
// Knight is included here too (piece-attack lookup, not a ray slide) since
// it shares the capture-then-quiet emission shape with the true sliders.
func (p *Position) generateSliderMoves(ml *MoveList, pt PieceType, us Color, enemies, occupied Bitboard) {
	pieces := p.Pieces[us][pt]
	own := p.Occupied[us]

	for bb := pieces; bb != 0; {
		from := bb.PopLSB()
		attacks := attacksFor(pt, from, occupied) &^ own

		captures := attacks & enemies
		for captures != 0 {
			ml.Add(NewMove(from, captures.PopLSB()))
		}
		quiets := attacks &^ enemies
		for quiets != 0 {
			ml.Add(NewMove(from, quiets.PopLSB()))
		}
	}
}

func attacksFor(pt PieceType, from Square, occupied Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(from)
	case Bishop:
		return BishopAttacks(from, occupied)
	case Rook:
		return RookAttacks(from, occupied)
	case Queen:
		return QueenAttacks(from, occupied)
	default:
		return 0
	}
}

func (p *Position) generateKingCapturesThenQuiets(ml *MoveList, us Color, enemies Bitboard) {
	from := p.KingSquare[us]
	attacks := KingAttacks(from) &^ p.Occupied[us]

	captures := attacks & enemies
	for captures != 0 {
		ml.Add(NewMove(from, captures.PopLSB()))
	}
	quiets := attacks &^ enemies
	for quiets != 0 {
		ml.Add(NewMove(from, quiets.PopLSB()))
	}
}

func (p *Position) generatePawnCaptures(ml *MoveList, us Color, enemies Bitboard) {
	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromoL := attackL &^ promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir+1), to))
	}
	nonPromoR := attackR &^ promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir-1), to))
	}
}

func (p *Position) generatePawnQuiets(ml *MoveList, us Color, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2 Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 &^ promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to))
	}
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*pushDir), to))
	}
}

func (p *Position) generatePawnPromotions(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to)
	}
	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir+1), to)
	}
	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir-1), to)
	}
}

func (p *Position) generateEnPassant(ml *MoveList, us Color) {
	if p.EnPassant == NoSquare {
		return
	}
	pawns := p.Pieces[us][Pawn]
	epBB := SquareBB(p.EnPassant)
	var attackers Bitboard
	if us == White {
		attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
	} else {
		attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
	}
	for attackers != 0 {
		ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
	}
}

// addPromotions adds all four promotion moves, queen first (best move
// ordering benefits from trying the most likely-useful promotion first).
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateCastlingMoves enumerates exactly the four castle geometries
// (WK/WQ/BK/BQ); no other castle encoding exists.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 &&
			p.AllOccupied&((1<<F1)|(1<<G1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			ml.Add(NewCastling(E1, G1))
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 &&
			p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			ml.Add(NewCastling(E1, C1))
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 &&
			p.AllOccupied&((1<<F8)|(1<<G8)) == 0 &&
			!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
			ml.Add(NewCastling(E8, G8))
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 &&
			p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 &&
			!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
			ml.Add(NewCastling(E8, C8))
		}
	}
}

// generateCaptures emits only the capture/promotion subset (gen_all_caps).
func (p *Position) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	p.generatePawnCaptures(ml, us, enemies)
	p.generatePawnPromotions(ml, us, enemies, occupied)
	p.generateEnPassant(ml, us)

	for _, pt := range [4]PieceType{Rook, Knight, Bishop, Queen} {
		for bb := p.Pieces[us][pt]; bb != 0; {
			from := bb.PopLSB()
			attacks := attacksFor(pt, from, occupied) & enemies
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}
}

// filterLegalMoves drops moves that would leave the side to move's own
// king in check.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}

	return result
}

// IsLegal returns true if the move does not leave the moving side's own
// king in check. Used both to filter generated moves and (via
// is_move_legal's generate+compare contract) to validate externally
// supplied UCI moves.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true // squares already validated during generation
		}
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}

	attacked := p.IsSquareAttacked(ksq, them)
	p.UnmakeMove(m, undo)

	return !attacked
}

// IsMoveLegal generates all moves and reports whether m is among them,
// exactly matching §4.4's is_move_legal contract for externally supplied
// (UCI) moves: generate, apply each, reject those leaving the king in
// check, compare to m.
func (p *Position) IsMoveLegal(m Move) bool {
	legal := p.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == m {
			return true
		}
	}
	return false
}

// MakeMove applies a move to the position and returns undo information.
// The steps differ in order from §4.3's make_move list (the side-to-move
// key is XORed first, castling rights are masked after the pieces move);
// every Zobrist update is an XOR, so the order does not change the key.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}

	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= ZobristCastling(p.CastlingRights)
	if p.EnPassant != NoSquare {
		p.Hash ^= ZobristEnPassant(p.EnPassant)
	}

	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= ZobristPiece(them, Pawn, capturedSq)
		p.PawnKey ^= ZobristPiece(them, Pawn, capturedSq)
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= ZobristPiece(them, captured.Type(), to)
		if captured.Type() == Pawn {
			p.PawnKey ^= ZobristPiece(them, Pawn, to)
		}
	}

	p.movePiece(from, to)
	p.Hash ^= ZobristPiece(us, pt, from)
	p.Hash ^= ZobristPiece(us, pt, to)
	if pt == Pawn {
		p.PawnKey ^= ZobristPiece(us, Pawn, from)
		p.PawnKey ^= ZobristPiece(us, Pawn, to)
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= ZobristPiece(us, Pawn, to)
		p.Hash ^= ZobristPiece(us, promoPt, to)
		p.PawnKey ^= ZobristPiece(us, Pawn, to)
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= ZobristPiece(us, Rook, rookFrom)
		p.Hash ^= ZobristPiece(us, Rook, rookTo)
	}

	p.CastlingRights &= castleRightsMask[from] & castleRightsMask[to]
	p.Hash ^= ZobristCastling(p.CastlingRights)

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= ZobristEnPassant(epSquare)
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece || m.IsCastling() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.Ply++
	p.UpdateCheckers()

	p.history = append(p.history, p.Hash)

	return undo
}

// UnmakeMove exactly inverts MakeMove, restoring fields from undo rather
// than recomputing them, then reversing the bitboard toggles.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	if len(p.history) > 0 {
		p.history = p.history[:len(p.history)-1]
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.SideToMove = us
	p.Ply--

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
