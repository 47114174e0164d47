package engine

import (
	"testing"

	"github.com/nilsgrau/chesscore/internal/board"
)

// TestTranspositionReplacementPolicy drives the six-case policy's EXACT/
// EXACT collision branch through the curated values: a fresh EXACT entry
// survives a same-key insert two generations later, but not one taken
// seventeen generations after the entry was stored.
func TestTranspositionReplacementPolicy(t *testing.T) {
	tt := NewTranspositionTable(1)

	// key = 1 in the upper 32 bits, idx = 0 in the lower bits that index
	// the bucket, so every Store below hits the same slot.
	const hash = uint64(1) << 32
	move := board.NewMove(board.E2, board.E4)

	advanceAge := func(to uint8) {
		for tt.age < to {
			tt.NewSearch()
		}
	}

	// Insert entry{key=1, depth=2, bound=EXACT, age=2}.
	advanceAge(2)
	tt.Store(hash, 2, 100, TTExact, move)

	entry, found := tt.Probe(hash)
	if !found || entry.Depth != 2 || entry.Age != 2 {
		t.Fatalf("expected initial entry depth=2 age=2, got %+v (found=%v)", entry, found)
	}

	// Attempt entry{key=1, depth=1, bound=EXACT, age=4}: refused, the gap
	// (2) is within AgeThreshold.
	advanceAge(4)
	tt.Store(hash, 1, 200, TTExact, move)

	entry, found = tt.Probe(hash)
	if !found || entry.Depth != 2 || entry.Age != 2 {
		t.Fatalf("expected refused replacement to leave depth=2 age=2, got %+v (found=%v)", entry, found)
	}

	// Attempt entry{key=1, depth=1, bound=EXACT, age=2+17}: accepted, the
	// gap (17) exceeds AgeThreshold.
	advanceAge(2 + 17)
	tt.Store(hash, 1, 300, TTExact, move)

	entry, found = tt.Probe(hash)
	if !found || entry.Depth != 1 || entry.Age != 19 {
		t.Fatalf("expected accepted replacement with depth=1 age=19, got %+v (found=%v)", entry, found)
	}
}
