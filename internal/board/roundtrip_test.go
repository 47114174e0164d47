package board

import (
	"reflect"
	"testing"
)

// findLegalMove looks up the legal move between two squares, mirroring the
// UCI layer's generate-all-and-match approach to turning external move
// strings into a board.Move.
func findLegalMove(t *testing.T, pos *Position, from, to Square) Move {
	t.Helper()
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == from && m.To() == to {
			return m
		}
	}
	t.Fatalf("no legal move %s-%s in position %s", from, to, pos)
	return NoMove
}

// TestMakeUnmakeRoundTrip applies e2e4 e7e5 g1f3 b8c6 f1b5 a7a6 b5a4 from
// startpos, records the resulting Zobrist key, unmakes all seven moves and
// checks the position is bit-exactly the starting position, then redoes
// the moves and checks the key matches.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	start := NewPosition()

	type step struct{ from, to Square }
	line := []step{
		{E2, E4}, {E7, E5}, {G1, F3}, {B8, C6}, {F1, B5}, {A7, A6}, {B5, A4},
	}

	replay := func() (*Position, uint64, []UndoInfo, []Move) {
		pos := NewPosition()
		undos := make([]UndoInfo, len(line))
		moves := make([]Move, len(line))
		for i, s := range line {
			m := findLegalMove(t, pos, s.from, s.to)
			undos[i] = pos.MakeMove(m)
			moves[i] = m
		}
		return pos, pos.Hash, undos, moves
	}

	pos, key, undos, moves := replay()

	for i := len(moves) - 1; i >= 0; i-- {
		pos.UnmakeMove(moves[i], undos[i])
	}

	// UnmakeMove reslices history back to length zero rather than nil;
	// normalize before comparing so the check isn't tripped by that
	// nil-vs-empty-slice distinction.
	if len(pos.history) == 0 {
		pos.history = nil
	}
	if len(start.history) == 0 {
		start.history = nil
	}

	if !reflect.DeepEqual(pos, start) {
		t.Fatalf("position after unwinding 7 moves does not match startpos")
	}

	for i, s := range line {
		m := findLegalMove(t, pos, s.from, s.to)
		if m != moves[i] {
			t.Fatalf("redo move %d: expected %s, got %s", i, moves[i], m)
		}
		pos.MakeMove(m)
	}

	if pos.Hash != key {
		t.Errorf("expected redone Hash %d, got %d", key, pos.Hash)
	}
}
