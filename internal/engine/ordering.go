package engine

import (
	"sort"

	"github.com/nilsgrau/chesscore/internal/board"
)

// HashMoveBonus is added to a move's score when it matches the
// transposition-table move handed to order_moves, guaranteeing it sorts
// first regardless of its MVV-LVA score.
const HashMoveBonus = 1_000_000

// mvvLvaRank maps a PieceType to its row/column in the 5x5 MVV-LVA table.
// King is excluded — it can never be a capture victim, and a king capture
// as attacker falls back to the plain material-difference score below.
func mvvLvaRank(pt board.PieceType) int {
	switch pt {
	case board.Pawn:
		return 0
	case board.Rook:
		return 1
	case board.Knight:
		return 2
	case board.Bishop:
		return 3
	case board.Queen:
		return 4
	default:
		return -1
	}
}

// mvvLva is the 5x5 Most-Valuable-Victim/Least-Valuable-Attacker table
// over {Pawn, Rook, Knight, Bishop, Queen}, built once from PieceValue so
// it stays consistent with the evaluator's material scale.
var mvvLva [5][5]int

func init() {
	ranked := [5]board.PieceType{board.Pawn, board.Rook, board.Knight, board.Bishop, board.Queen}
	for v, victim := range ranked {
		for a, attacker := range ranked {
			mvvLva[v][a] = board.PieceValue[victim]*10 - board.PieceValue[attacker]
		}
	}
}

// ScoredMove is the search's view of a move: the compact encoded Move
// plus the moved/captured piece tags and an ordering score, matching the
// data model's ChessMove fields without bloating board.Move itself (which
// stays a 16-bit value so the transposition table and undo stack remain
// cheap to copy).
type ScoredMove struct {
	Move     board.Move
	Moved    board.Piece
	Captured board.Piece
	Score    int
}

// OrderMoves builds the scored, sorted move list order_moves specifies: a
// stable descending sort by score, where a hash move (if present in the
// list) is bumped above every other move first. Captures are scored by
// MVV-LVA, non-capturing promotions by a fixed tier below captures, and
// quiet moves at zero.
func OrderMoves(pos *board.Position, ml *board.MoveList, hashMove board.Move) []ScoredMove {
	scored := make([]ScoredMove, ml.Len())

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		moved := pos.PieceAt(m.From())

		var captured board.Piece
		if m.IsEnPassant() {
			captured = board.NewPiece(board.Pawn, pos.SideToMove.Other())
		} else {
			captured = pos.PieceAt(m.To())
		}

		score := scoreMove(moved, captured, m)
		if m == hashMove {
			score += HashMoveBonus
		}

		scored[i] = ScoredMove{Move: m, Moved: moved, Captured: captured, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func scoreMove(moved, captured board.Piece, m board.Move) int {
	const (
		captureBase   = 100000
		promotionBase = 50000
	)

	if captured != board.NoPiece {
		victimRank := mvvLvaRank(captured.Type())
		attackerRank := mvvLvaRank(moved.Type())
		if victimRank >= 0 && attackerRank >= 0 {
			return captureBase + mvvLva[victimRank][attackerRank]
		}
		// King-as-attacker fallback: plain victim-minus-attacker value.
		return captureBase + captured.Value() - moved.Value()
	}

	if m.IsPromotion() {
		return promotionBase + board.PieceValue[m.Promotion()]
	}

	return 0
}
