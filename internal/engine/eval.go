// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/nilsgrau/chesscore/internal/board"
)

// Stage classifies the game phase from total non-pawn material on the
// board, per §4.5.
type Stage int

const (
	Opening Stage = iota
	Midgame
	EarlyEndgame
	LateEndgame
)

// isEndgame reports whether king safety/PST terms should use their
// endgame-weighted form rather than the middlegame one.
func (s Stage) isEndgame() bool {
	return s == EarlyEndgame || s == LateEndgame
}

// classifyStage buckets total non-pawn material (both sides) into one of
// the four stages.
func classifyStage(totalNonPawnMaterial int) Stage {
	switch {
	case totalNonPawnMaterial > 6600:
		return Opening
	case totalNonPawnMaterial > 4000:
		return Midgame
	case totalNonPawnMaterial > 2000:
		return EarlyEndgame
	default:
		return LateEndgame
	}
}

// PositionType classifies how open or closed a position is, from the total
// pawn count, per §4.5.
type PositionType int

const (
	Closed PositionType = iota
	SemiClosed
	SemiOpen
	Open
)

func classifyPositionType(pawnCount int) PositionType {
	switch {
	case pawnCount > 12:
		return Closed
	case pawnCount > 8:
		return SemiClosed
	case pawnCount > 4:
		return SemiOpen
	default:
		return Open
	}
}

// colorSign returns +1 for White, -1 for Black, as an explicit branch
// rather than bit arithmetic on the Color value.
func colorSign(c board.Color) int {
	if c == board.White {
		return 1
	}
	return -1
}

// Evaluation constants. evaluateMaterial below scales these base values
// per stage/position-type exactly as
// queenPerc/rookPerc/bishopPerc/knightPerc/pawnStrength specify.
const (
	PawnValue   = 100
	KnightValue = 310
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 910
	KingValue   = 0
)

var pieceValues = board.PieceValue

// queenPerc/rookPerc/bishopPerc/knightPerc scale material by position
// type (Closed, SemiClosed, SemiOpen, Open); pawnStrength scales it by
// stage (Opening, Midgame, EarlyEndgame, LateEndgame). Queens and rooks
// gain value as the position opens up; knights lose value; pawns grow
// stronger as material comes off the board.
var (
	queenPerc    = [4]float64{1.0, 1.05, 1.15, 1.30}
	rookPerc     = [4]float64{0.8, 1.0, 1.2, 1.5}
	bishopPerc   = [4]float64{1.0, 1.0, 1.1, 1.2}
	knightPerc   = [4]float64{1.2, 1.1, 1.0, 0.85}
	pawnStrength = [4]float64{1.0, 1.0, 1.1, 1.15}
)

// connectivity is a defender-type bonus table (pawn through king); no
// evaluation term reads it.
var connectivity = [6]float64{9.1, 5.0, 3.3, 3.1, 1.0, 0}

// Passed pawn bonuses by rank (from pawn's perspective, rank index 0-7).
var passedPawnBonus = [8]int{0, 0, 0, 12, 25, 50, 100, 0}

const (
	passedPawnConnectedBonus = 20
	passedPawnProtectedBonus = 15
	passedPawnFreePathBonus  = 30
	rookSupportingPassedPawn = 20
)

// Mobility weights per piece type
var mobilityMgWeight = [6]int{0, 4, 5, 2, 1, 0} // Pawn, Knight, Bishop, Rook, Queen, King
var mobilityEgWeight = [6]int{0, 3, 4, 4, 2, 0}

// King safety weights per attacker type
var attackerWeight = [6]int{0, 20, 20, 40, 80, 0} // Pawn, Knight, Bishop, Rook, Queen, King

const (
	pawnShieldBonus      = 10  // Bonus per pawn in front of king
	pawnShieldMissing    = -15 // Penalty per missing shield pawn
	openFileNearKing     = -20 // Penalty for open file near king
	semiOpenFileNearKing = -10 // Penalty for semi-open file
)

// Bishop pair bonus (having two bishops)
const (
	bishopPairBonus        = 10
	bishopOnLongDiagonal   = 7
	bishopOnOpenLongDiagon = 12
)

// Rook on open/semi-open file bonuses, plus 7th-rank and connected-rook
// terms.
const (
	rookOpenFileBonus           = 15
	rookOpenFileNoOpposingBonus = 25
	rookSemiOpenFileBonus       = 8
	rookOn7thBonus              = 9
	connectedRookBonus          = 10
)

// Pawn structure penalties
const (
	doubledPawnPenalty  = -8
	isolatedPawnPenalty = -9
	halfIsolatedPenalty = -5
	backwardPawnPenalty = -5
	blockingPawnPenalty = -5
	hangingPawnPenalty  = -15
	unopposedPawnBonus  = 5
)

var pawnIslandPenalty = [4]int{0, -1, -2, -3}

// Outpost bonuses
const (
	knightOutpostBonus = 5
	knightMobility     = 4
	openingMidgameBishopMobility = 5
	openingMidgameRookMobility   = 3
	endgameRookMobility          = 9
	queenMobility                = 5
	openingMidgameKingMobility   = 11
	endgameKingMobility          = 15
	queenQuickDevelopmentPenalty = -15
)

// Tempo bonus - small advantage for having the move.
const tempoBonus = 5

// Threat evaluation constants
const (
	hangingPiecePenalty = -40 // Undefended piece attacked by enemy
	threatByPawnBonus   = 25  // Attacking enemy piece with pawn
	threatByMinorBonus  = 20  // Attacking enemy major with minor
	loosePiecePenalty   = -10 // Undefended piece (potential target)
)

// King tropism weights per piece type (bonus for proximity to enemy king)
var tropismWeight = [6]int{0, 3, 2, 2, 5, 0} // Pawn, Knight, Bishop, Rook, Queen, King

// Passed pawn king distance bonus table
var kingDistanceBonus = [8]int{0, 0, 10, 20, 30, 40, 50, 60}

const passedPawnUnstoppableBonus = 200 // Pawn cannot be caught by enemy king

// Space evaluation constants
const (
	spaceSquareBonus     = 2 // Per empty square in the side's space zone
	spaceBehindPawnBonus = 3 // Extra bonus if behind our pawn chain
	spaceMinPieces       = 3 // Minimum pieces to apply space evaluation
)

// Space zones for each side (central files, ranks 2-5 for white, 4-7 for black)
var (
	whiteSpaceZone = (board.FileC | board.FileD | board.FileE | board.FileF) &
		(board.Rank2 | board.Rank3 | board.Rank4 | board.Rank5)
	blackSpaceZone = (board.FileC | board.FileD | board.FileE | board.FileF) &
		(board.Rank4 | board.Rank5 | board.Rank6 | board.Rank7)
)

// Trapped piece penalties
const (
	// Bad bishop penalty (per blocking pawn on same color)
	badBishopPenaltyMg = -5
	badBishopPenaltyEg = -10

	// Trapped bishop (on a corner square: a1/h1/a8/h8)
	trappedBishopPenaltyMg = -80
	trappedBishopPenaltyEg = -50

	// Trapped rook (in corner by own king, no castling rights)
	trappedRookPenaltyMg = -50
	trappedRookPenaltyEg = -25

	// Knight on rim penalties
	knightRimPenaltyMg    = -15 // On a rim square other than a corner
	knightRimPenaltyEg    = -10
	knightCornerPenaltyMg = -30 // On corner squares
	knightCornerPenaltyEg = -20
)

// Light and dark square masks
var (
	lightSquares board.Bitboard // Squares where file+rank is odd (a1 is dark)
	darkSquares  board.Bitboard // Squares where file+rank is even
)

// Rim and corner masks for knights
var (
	rimSquares    = board.FileA | board.FileH | board.Rank1 | board.Rank8
	cornerSquares = board.SquareBB(board.A1) | board.SquareBB(board.H1) |
		board.SquareBB(board.A8) | board.SquareBB(board.H8)
)

// fileMasks indexes the eight file bitboards by file number (0=a, 7=h).
var fileMasks = [8]board.Bitboard{
	board.FileA, board.FileB, board.FileC, board.FileD,
	board.FileE, board.FileF, board.FileG, board.FileH,
}

func fileMaskOf(f int) board.Bitboard {
	return fileMasks[f]
}

func init() {
	for sq := board.A1; sq <= board.H8; sq++ {
		if (sq.File()+sq.Rank())%2 == 1 {
			lightSquares |= board.SquareBB(sq)
		} else {
			darkSquares |= board.SquareBB(sq)
		}
	}
}

// Piece-Square Tables (PST) for positional evaluation.
// Values are from White's perspective; mirrored for Black.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 27, 27, 10, 5, 5,
	0, 0, 0, 25, 25, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -25, -25, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-5, -2, -2, -2, -2, -2, -2, -5,
	-2, 0, 0, 0, 0, 0, 0, -2,
	-2, 0, 1, 2, 2, 1, 0, -2,
	-2, 0, 2, 4, 4, 2, 0, -2,
	-2, 0, 2, 4, 4, 2, 0, -2,
	-2, 0, 1, 2, 2, 1, 0, -2,
	-2, 0, 0, 0, 0, 0, 0, -2,
	-5, -2, -2, -2, -2, -2, -2, -5,
}

var bishopPST = [64]int{
	-2, -1, -1, -1, -1, -1, -1, -2,
	-1, 5, 0, 0, 0, 0, 5, -1,
	-1, 2, 5, 2, 2, 5, 2, -1,
	-1, 1, 1, 1, 1, 1, 1, -1,
	-1, 0, 1, 1, 1, 1, 0, -1,
	-1, 1, 1, 1, 1, 1, 1, -1,
	-1, 1, 0, 0, 0, 0, 1, -1,
	-2, -1, -4, -1, -1, -4, -1, -2,
}

var rookPST = [64]int{
	-4, -2, 0, 2, 2, 0, -2, -4,
	-2, 0, 0, 2, 2, 0, 0, -2,
	0, 0, 1, 2, 2, 1, 0, 0,
	2, 2, 2, 3, 3, 2, 0, 2,
	2, 2, 2, 3, 3, 2, 0, 2,
	0, 0, 1, 2, 2, 1, 0, 0,
	-2, 0, 0, 0, 0, 0, 0, -2,
	-4, -2, 0, 2, 2, 0, -2, -4,
}

var queenPST = [64]int{
	-6, -3, -1, 0, 0, -1, -3, -6,
	-3, 3, 0, 2, 2, 0, 3, -3,
	-1, 2, 6, 4, 4, 6, 2, -1,
	0, 3, 3, 7, 7, 3, 3, 0,
	0, 3, 3, 7, 7, 3, 3, 0,
	-1, 2, 6, 4, 4, 6, 2, -1,
	-3, 3, 0, 2, 2, 0, 3, -3,
	-6, -3, -1, 0, 0, -1, -3, -6,
}

// kingMidgamePST is used in Opening/Midgame stages.
var kingMidgamePST = [64]int{
	2, 3, 1, 0, 0, 1, 3, 2,
	2, 2, 0, 0, 0, 0, 2, 2,
	-10, -10, -20, -20, -20, -20, -20, -10,
	-30, -30, -30, -100, -100, -30, -30, -30,
	-40, -40, -40, -100, -100, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

// kingEndgamePST is used in EarlyEndgame/LateEndgame stages.
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}

// Evaluate returns the static evaluation of the position relative to the
// side to move (positive favours the side to move), classifying stage and
// position type, scaling material by both, and summing every positional
// term. The terms are summed from White's perspective and the sum is
// negated when Black is to move, so the result is not White-relative: a
// colour-reversed position with the other side to move returns the same
// score, not the negated one.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

// EvaluateWithPawnTable is like Evaluate but caches pawn-structure scoring
// in pt, keyed on the position's incrementally-maintained pawn hash.
func EvaluateWithPawnTable(pos *board.Position, pt *PawnTable) int {
	return evaluate(pos, pt)
}

func evaluate(pos *board.Position, pt *PawnTable) int {
	wPawns := pos.Pieces[board.White][board.Pawn].PopCount()
	bPawns := pos.Pieces[board.Black][board.Pawn].PopCount()
	pawnCount := wPawns + bPawns

	nonPawnMaterial := 0
	for c := board.White; c <= board.Black; c++ {
		for piece := board.Knight; piece <= board.Queen; piece++ {
			nonPawnMaterial += pos.Pieces[c][piece].PopCount() * pieceValues[piece]
		}
	}

	stage := classifyStage(nonPawnMaterial)
	posType := classifyPositionType(pawnCount)

	score := evaluateMaterial(pos, stage, posType, wPawns, bPawns)
	score += evaluatePSTs(pos, stage)

	var psMg, psEg int
	if pt != nil {
		psMg, psEg = evaluatePawnStructureWithCache(pos, pt)
	} else {
		psMg, psEg = evaluatePawnStructure(pos)
	}
	score += stageBlend(stage, psMg, psEg)

	ppMg, ppEg := evaluatePassedPawns(pos)
	score += stageBlend(stage, ppMg, ppEg)

	mobMg, mobEg := evaluateMobility(pos)
	score += stageBlend(stage, mobMg, mobEg)

	if !stage.isEndgame() {
		score += evaluateKingSafety(pos)
		score += evaluateKingTropism(pos)
		score += evaluateSpace(pos)
	}

	bpMg, bpEg := evaluateBishopPair(pos)
	score += stageBlend(stage, bpMg, bpEg)

	rfMg, rfEg := evaluateRooksOnFiles(pos)
	score += stageBlend(stage, rfMg, rfEg)

	coordMg, coordEg := evaluatePieceCoordination(pos)
	score += stageBlend(stage, coordMg, coordEg)

	opMg, opEg := evaluateOutposts(pos)
	score += stageBlend(stage, opMg, opEg)

	thrMg, thrEg := evaluateThreats(pos)
	score += stageBlend(stage, thrMg, thrEg)

	tpMg, tpEg := evaluateTrappedPieces(pos)
	score += stageBlend(stage, tpMg, tpEg)

	score += evaluateQueenDevelopment(pos, stage)

	score += tempoBonus * colorSign(pos.SideToMove)

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// stageBlend picks the middlegame or endgame term depending on stage,
// mirroring the original's binary selection between its two king tables
// rather than a continuous interpolation.
func stageBlend(stage Stage, mg, eg int) int {
	if stage.isEndgame() {
		return eg
	}
	return mg
}

// evaluateMaterial scales each piece type's base value by position-type
// (bishops/knights/rooks/queens) or stage (pawns), per §4.5, then sums
// the White-minus-Black differential.
func evaluateMaterial(pos *board.Position, stage Stage, posType PositionType, wPawns, bPawns int) int {
	wB := pos.Pieces[board.White][board.Bishop].PopCount()
	bB := pos.Pieces[board.Black][board.Bishop].PopCount()
	wN := pos.Pieces[board.White][board.Knight].PopCount()
	bN := pos.Pieces[board.Black][board.Knight].PopCount()
	wR := pos.Pieces[board.White][board.Rook].PopCount()
	bR := pos.Pieces[board.Black][board.Rook].PopCount()
	wQ := pos.Pieces[board.White][board.Queen].PopCount()
	bQ := pos.Pieces[board.Black][board.Queen].PopCount()

	score := bishopPerc[posType]*float64(BishopValue*(wB-bB)) +
		knightPerc[posType]*float64(KnightValue*(wN-bN)) +
		queenPerc[posType]*float64(QueenValue*(wQ-bQ)) +
		rookPerc[posType]*float64(RookValue*(wR-bR)) +
		pawnStrength[stage]*float64(PawnValue*(wPawns-bPawns))

	return int(score)
}

// evaluatePSTs sums the dot-product of each side's pieces against its
// piece-square table, rotating Black's square by 180 degrees (sq ^ 63: a
// vertical flip plus a file mirror).
// The king uses the stage-selected table (mg or eg) per §4.5.
func evaluatePSTs(pos *board.Position, stage Stage) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		for piece := board.Pawn; piece <= board.King; piece++ {
			bb := pos.Pieces[c][piece]
			for bb != 0 {
				sq := bb.PopLSB()
				pstSq := sq
				if c == board.Black {
					pstSq = sq ^ 63
				}
				if piece == board.King {
					if stage.isEndgame() {
						score += sign * kingEndgamePST[pstSq]
					} else {
						score += sign * kingMidgamePST[pstSq]
					}
				} else {
					score += sign * psts[piece][pstSq]
				}
			}
		}
	}
	return score
}

// evaluateQueenDevelopment penalizes a queen that has left its home
// square during the Opening stage.
func evaluateQueenDevelopment(pos *board.Position, stage Stage) int {
	if stage != Opening {
		return 0
	}
	score := 0
	if pos.Pieces[board.White][board.Queen] != board.SquareBB(board.D1) {
		score += queenQuickDevelopmentPenalty
	}
	if pos.Pieces[board.Black][board.Queen] != board.SquareBB(board.D8) {
		score -= queenQuickDevelopmentPenalty
	}
	return score
}

// EvaluateMaterial returns just the material differential, from White's
// perspective, ignoring stage/position-type scaling — an unscaled sum of
// base piece values.
func EvaluateMaterial(pos *board.Position) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		for piece := board.Pawn; piece <= board.Queen; piece++ {
			score += sign * pos.Pieces[c][piece].PopCount() * pieceValues[piece]
		}
	}
	return score
}

// IsEndgame reports whether the position's non-pawn material classifies
// as EarlyEndgame or LateEndgame.
func IsEndgame(pos *board.Position) bool {
	nonPawnMaterial := 0
	for c := board.White; c <= board.Black; c++ {
		for piece := board.Knight; piece <= board.Queen; piece++ {
			nonPawnMaterial += pos.Pieces[c][piece].PopCount() * pieceValues[piece]
		}
	}
	return classifyStage(nonPawnMaterial).isEndgame()
}

func isPassedPawn(pos *board.Position, sq board.Square, color board.Color) bool {
	file := sq.File()
	rank := sq.Rank()

	var enemyPawns board.Bitboard
	if color == board.White {
		enemyPawns = pos.Pieces[board.Black][board.Pawn]
	} else {
		enemyPawns = pos.Pieces[board.White][board.Pawn]
	}

	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		for r := 0; r < 8; r++ {
			if color == board.White && r <= rank {
				continue
			}
			if color == board.Black && r >= rank {
				continue
			}
			blockerSq := board.NewSquare(f, r)
			if enemyPawns.IsSet(blockerSq) {
				return false
			}
		}
	}
	return true
}

func evaluatePassedPawns(pos *board.Position) (mgBonus, egBonus int) {
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		pawns := pos.Pieces[c][board.Pawn]
		for pawns != 0 {
			sq := pawns.PopLSB()
			if !isPassedPawn(pos, sq, c) {
				continue
			}
			rank := sq.Rank()
			idx := int(rank)
			if c == board.Black {
				idx = 7 - idx
			}
			bonus := passedPawnBonus[idx]
			mgBonus += sign * bonus
			egBonus += sign * (bonus + bonus/2)

			rookBB := pos.Pieces[c][board.Rook]
			if (board.SquareBB(sq).FileFill() & rookBB) != 0 {
				mgBonus += sign * rookSupportingPassedPawn
				egBonus += sign * rookSupportingPassedPawn
			}
		}
	}
	return
}

func evaluateMobility(pos *board.Position) (mgBonus, egBonus int) {
	occupied := pos.Occupied[board.White] | pos.Occupied[board.Black]

	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		friendly := pos.Occupied[c]

		for piece := board.Knight; piece <= board.Queen; piece++ {
			bb := pos.Pieces[c][piece]
			for bb != 0 {
				sq := bb.PopLSB()
				var attacks board.Bitboard
				switch piece {
				case board.Knight:
					attacks = board.KnightAttacks(sq)
				case board.Bishop:
					attacks = board.BishopAttacks(sq, occupied)
				case board.Rook:
					attacks = board.RookAttacks(sq, occupied)
				case board.Queen:
					attacks = board.QueenAttacks(sq, occupied)
				}
				mobility := (attacks &^ friendly).PopCount()
				mgBonus += sign * mobility * mobilityMgWeight[piece]
				egBonus += sign * mobility * mobilityEgWeight[piece]
			}
		}
	}
	return
}

func evaluateKingSafety(pos *board.Position) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		kingBB := pos.Pieces[c][board.King]
		if kingBB == 0 {
			continue
		}
		kingSq := kingBB.LSB()
		ownPawns := pos.Pieces[c][board.Pawn]

		shieldFile := kingSq.File()
		for f := shieldFile - 1; f <= shieldFile+1; f++ {
			if f < 0 || f > 7 {
				continue
			}
			fileMask := fileMaskOf(f)
			if (ownPawns & fileMask) != 0 {
				score += sign * pawnShieldBonus
			} else {
				score += sign * pawnShieldMissing
			}
		}
	}
	return score
}

func evaluateKingTropism(pos *board.Position) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		enemyKingBB := pos.Pieces[c.Other()][board.King]
		if enemyKingBB == 0 {
			continue
		}
		enemyKingSq := enemyKingBB.LSB()

		for piece := board.Knight; piece <= board.Queen; piece++ {
			bb := pos.Pieces[c][piece]
			for bb != 0 {
				sq := bb.PopLSB()
				dist := chebyshevDistance(sq, enemyKingSq)
				score += sign * tropismWeight[piece] * (7 - dist)
			}
		}
	}
	return score
}

func chebyshevDistance(sq1, sq2 board.Square) int {
	fileDiff := int(sq1.File()) - int(sq2.File())
	rankDiff := int(sq1.Rank()) - int(sq2.Rank())
	if fileDiff < 0 {
		fileDiff = -fileDiff
	}
	if rankDiff < 0 {
		rankDiff = -rankDiff
	}
	return maxInt(fileDiff, rankDiff)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func evaluateBishopPair(pos *board.Position) (mgBonus, egBonus int) {
	wBishops := pos.Pieces[board.White][board.Bishop].PopCount()
	bBishops := pos.Pieces[board.Black][board.Bishop].PopCount()
	if wBishops >= 2 {
		mgBonus += bishopPairBonus
		egBonus += bishopPairBonus
	}
	if bBishops >= 2 {
		mgBonus -= bishopPairBonus
		egBonus -= bishopPairBonus
	}
	return
}

func evaluateRooksOnFiles(pos *board.Position) (mgBonus, egBonus int) {
	wPawns := pos.Pieces[board.White][board.Pawn]
	bPawns := pos.Pieces[board.Black][board.Pawn]

	for file := 0; file < 8; file++ {
		fileMask := fileMaskOf(file)
		hasWhitePawn := (wPawns & fileMask) != 0
		hasBlackPawn := (bPawns & fileMask) != 0

		wRooksOnFile := pos.Pieces[board.White][board.Rook] & fileMask
		bRooksOnFile := pos.Pieces[board.Black][board.Rook] & fileMask

		if wRooksOnFile != 0 {
			switch {
			case !hasWhitePawn && !hasBlackPawn:
				mgBonus += rookOpenFileBonus * wRooksOnFile.PopCount()
				egBonus += rookOpenFileBonus * wRooksOnFile.PopCount()
			case !hasWhitePawn:
				mgBonus += rookSemiOpenFileBonus * wRooksOnFile.PopCount()
				egBonus += rookSemiOpenFileBonus * wRooksOnFile.PopCount()
			}
			if wRooksOnFile.PopCount() >= 2 {
				mgBonus += connectedRookBonus
				egBonus += connectedRookBonus
			}
		}
		if bRooksOnFile != 0 {
			switch {
			case !hasBlackPawn && !hasWhitePawn:
				mgBonus -= rookOpenFileBonus * bRooksOnFile.PopCount()
				egBonus -= rookOpenFileBonus * bRooksOnFile.PopCount()
			case !hasBlackPawn:
				mgBonus -= rookSemiOpenFileBonus * bRooksOnFile.PopCount()
				egBonus -= rookSemiOpenFileBonus * bRooksOnFile.PopCount()
			}
			if bRooksOnFile.PopCount() >= 2 {
				mgBonus -= connectedRookBonus
				egBonus -= connectedRookBonus
			}
		}
	}
	return
}

func evaluatePawnStructure(pos *board.Position) (mgPenalty, egPenalty int) {
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		pawns := pos.Pieces[c][board.Pawn]
		enemyPawns := pos.Pieces[c.Other()][board.Pawn]

		islandCount := 0
		inIsland := false
		for f := 0; f < 8; f++ {
			fileMask := fileMaskOf(f)
			onFile := pawns & fileMask
			count := onFile.PopCount()

			if count == 0 {
				inIsland = false
				continue
			}
			if !inIsland {
				islandCount++
				inIsland = true
			}
			if count >= 2 {
				mgPenalty += sign * doubledPawnPenalty
				egPenalty += sign * doubledPawnPenalty
			}

			adjacentFiles := board.Bitboard(0)
			if f > 0 {
				adjacentFiles |= fileMaskOf(f - 1)
			}
			if f < 7 {
				adjacentFiles |= fileMaskOf(f + 1)
			}
			if (pawns & adjacentFiles) == 0 {
				mgPenalty += sign * isolatedPawnPenalty
				egPenalty += sign * isolatedPawnPenalty
			} else if (pawns&adjacentFiles).PopCount() == 1 {
				mgPenalty += sign * halfIsolatedPenalty
				egPenalty += sign * halfIsolatedPenalty
			}
			if (enemyPawns & fileMask) == 0 {
				mgPenalty += sign * unopposedPawnBonus
				egPenalty += sign * unopposedPawnBonus
			}
		}
		if islandCount > 0 {
			idx := islandCount - 1
			if idx >= len(pawnIslandPenalty) {
				idx = len(pawnIslandPenalty) - 1
			}
			mgPenalty += sign * pawnIslandPenalty[idx]
			egPenalty += sign * pawnIslandPenalty[idx]
		}
	}
	return
}

func evaluatePawnStructureWithCache(pos *board.Position, pt *PawnTable) (mgScore, egScore int) {
	if mg, eg, ok := pt.Probe(pos.PawnKey); ok {
		return mg, eg
	}
	mgScore, egScore = evaluatePawnStructure(pos)
	pt.Store(pos.PawnKey, mgScore, egScore)
	return
}

func evaluateOutposts(pos *board.Position) (mgBonus, egBonus int) {
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		ownPawns := pos.Pieces[c][board.Pawn]
		enemyPawns := pos.Pieces[c.Other()][board.Pawn]

		knights := pos.Pieces[c][board.Knight]
		for knights != 0 {
			sq := knights.PopLSB()
			if !isOutpost(sq, c, ownPawns, enemyPawns) {
				continue
			}
			mgBonus += sign * knightOutpostBonus
			egBonus += sign * knightOutpostBonus
		}
	}
	return
}

// isOutpost reports whether sq is defended by a pawn of color c and can
// never be challenged by an enemy pawn.
func isOutpost(sq board.Square, c board.Color, ownPawns, enemyPawns board.Bitboard) bool {
	file := sq.File()
	rank := sq.Rank()
	defendingRank := rank - 1
	if c == board.Black {
		defendingRank = rank + 1
	}

	var defended bool
	if defendingRank >= 0 && defendingRank <= 7 {
		if file > 0 && ownPawns.IsSet(board.NewSquare(file-1, defendingRank)) {
			defended = true
		}
		if file < 7 && ownPawns.IsSet(board.NewSquare(file+1, defendingRank)) {
			defended = true
		}
	}
	if !defended {
		return false
	}

	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		for r := 0; r < 8; r++ {
			if c == board.White && r <= rank {
				continue
			}
			if c == board.Black && r >= rank {
				continue
			}
			if enemyPawns.IsSet(board.NewSquare(f, r)) {
				return false
			}
		}
	}
	return true
}

func evaluateThreats(pos *board.Position) (mgBonus, egBonus int) {
	occupied := pos.Occupied[board.White] | pos.Occupied[board.Black]

	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		enemy := c.Other()

		ourPawnAttacks := computePawnAttacksBB(pos, c)
		enemyMinorsAndMajors := pos.Pieces[enemy][board.Knight] | pos.Pieces[enemy][board.Bishop] |
			pos.Pieces[enemy][board.Rook] | pos.Pieces[enemy][board.Queen]
		threatened := ourPawnAttacks & enemyMinorsAndMajors
		count := threatened.PopCount()
		mgBonus += sign * count * threatByPawnBonus
		egBonus += sign * count * threatByPawnBonus

		ourMinorAttacks := computeKnightAttacksBB(pos, c) | computeBishopAttacksBB(pos, c, occupied)
		enemyMajors := pos.Pieces[enemy][board.Rook] | pos.Pieces[enemy][board.Queen]
		minorThreats := (ourMinorAttacks & enemyMajors).PopCount()
		mgBonus += sign * minorThreats * threatByMinorBonus
		egBonus += sign * minorThreats * threatByMinorBonus
	}
	return
}

func computePawnAttacksBB(pos *board.Position, color board.Color) board.Bitboard {
	pawns := pos.Pieces[color][board.Pawn]
	if color == board.White {
		return (pawns.NorthEast() &^ board.FileA) | (pawns.NorthWest() &^ board.FileH)
	}
	return (pawns.SouthEast() &^ board.FileA) | (pawns.SouthWest() &^ board.FileH)
}

func computeKnightAttacksBB(pos *board.Position, color board.Color) board.Bitboard {
	var attacks board.Bitboard
	bb := pos.Pieces[color][board.Knight]
	for bb != 0 {
		sq := bb.PopLSB()
		attacks |= board.KnightAttacks(sq)
	}
	return attacks
}

func computeBishopAttacksBB(pos *board.Position, color board.Color, occupied board.Bitboard) board.Bitboard {
	var attacks board.Bitboard
	bb := pos.Pieces[color][board.Bishop]
	for bb != 0 {
		sq := bb.PopLSB()
		attacks |= board.BishopAttacks(sq, occupied)
	}
	return attacks
}

func evaluatePieceCoordination(pos *board.Position) (mgBonus, egBonus int) {
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		seventh := board.Rank7
		if c == board.Black {
			seventh = board.Rank2
		}
		rooksOn7th := (pos.Pieces[c][board.Rook] & seventh).PopCount()
		if rooksOn7th > 0 {
			mgBonus += sign * rooksOn7th * rookOn7thBonus
			egBonus += sign * rooksOn7th * rookOn7thBonus
		}
	}
	return
}

func evaluateSpace(pos *board.Position) int {
	totalPieces := (pos.Occupied[board.White] | pos.Occupied[board.Black]).PopCount()
	if totalPieces < spaceMinPieces*2 {
		return 0
	}

	occupied := pos.Occupied[board.White] | pos.Occupied[board.Black]
	score := 0

	wControl := (whiteSpaceZone &^ occupied).PopCount()
	bControl := (blackSpaceZone &^ occupied).PopCount()
	score += wControl * spaceSquareBonus
	score -= bControl * spaceSquareBonus

	return score
}

func evaluateTrappedPieces(pos *board.Position) (mgPenalty, egPenalty int) {
	for c := board.White; c <= board.Black; c++ {
		sign := colorSign(c)
		bishops := pos.Pieces[c][board.Bishop]
		for bishops != 0 {
			sq := bishops.PopLSB()
			if cornerSquares.IsSet(sq) {
				mgPenalty += sign * trappedBishopPenaltyMg
				egPenalty += sign * trappedBishopPenaltyEg
			}
		}
		knights := pos.Pieces[c][board.Knight]
		for knights != 0 {
			sq := knights.PopLSB()
			if cornerSquares.IsSet(sq) {
				mgPenalty += sign * knightCornerPenaltyMg
				egPenalty += sign * knightCornerPenaltyEg
			} else if rimSquares.IsSet(sq) {
				mgPenalty += sign * knightRimPenaltyMg
				egPenalty += sign * knightRimPenaltyEg
			}
		}
	}
	return
}

// SEE performs a static exchange evaluation of a capture: the net
// material gain if both sides keep recapturing on the destination square
// with their least valuable attacker first.
func SEE(pos *board.Position, m board.Move) int {
	if !m.IsCapture(pos) {
		return 0
	}

	target := m.To()
	var captured board.Piece
	if m.IsEnPassant() {
		captured = board.NewPiece(board.Pawn, pos.SideToMove.Other())
	} else {
		captured = pos.PieceAt(target)
	}

	attacker := pos.PieceAt(m.From())

	gain := captured.Value()
	return gain - seeSwap(pos, target, m.From(), attacker, gain)
}

func seeSwap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	occupied := (pos.Occupied[board.White] | pos.Occupied[board.Black]) &^ board.SquareBB(excludeFrom)
	side := firstAttacker.Color().Other()

	sq, piece := getLeastValuableAttacker(pos, target, side, occupied)
	if piece == board.NoPiece {
		return 0
	}

	gain := firstAttacker.Value() - seeSwap2(pos, target, excludeFrom, sq, piece, occupied)
	if gain < 0 {
		gain = 0
	}
	return gain
}

func seeSwap2(pos *board.Position, target, firstExclude, sq board.Square, attacker board.Piece, occupied board.Bitboard) int {
	occupied &^= board.SquareBB(sq)
	side := attacker.Color().Other()

	nextSq, nextPiece := getLeastValuableAttacker(pos, target, side, occupied)
	if nextPiece == board.NoPiece {
		return 0
	}

	gain := attacker.Value() - seeSwap2(pos, target, firstExclude, nextSq, nextPiece, occupied)
	if gain < 0 {
		gain = 0
	}
	return gain
}

func getLeastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	for piece := board.Pawn; piece <= board.King; piece++ {
		bb := pos.Pieces[side][piece] & occupied
		var attackers board.Bitboard
		switch piece {
		case board.Pawn:
			if side == board.White {
				attackers = (board.SquareBB(target).SouthEast() | board.SquareBB(target).SouthWest()) & bb
			} else {
				attackers = (board.SquareBB(target).NorthEast() | board.SquareBB(target).NorthWest()) & bb
			}
		case board.Knight:
			attackers = board.KnightAttacks(target) & bb
		case board.Bishop:
			attackers = board.BishopAttacks(target, occupied) & bb
		case board.Rook:
			attackers = board.RookAttacks(target, occupied) & bb
		case board.Queen:
			attackers = board.QueenAttacks(target, occupied) & bb
		case board.King:
			attackers = board.KingAttacks(target) & bb
		}
		if attackers != 0 {
			sq := attackers.LSB()
			return sq, board.NewPiece(piece, side)
		}
	}
	return board.NoSquare, board.NoPiece
}
