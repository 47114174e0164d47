package engine

import (
	"testing"
	"time"

	"github.com/nilsgrau/chesscore/internal/board"
)

func TestThinkFindsAMoveAtStartpos(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(DefaultOptions())

	limits := UCILimits{Depth: 4}
	move := eng.Think(pos, limits)
	if move == board.NoMove {
		t.Fatal("Think returned NoMove for starting position")
	}
	if eng.ResultFlag() != NoResult {
		t.Errorf("expected NoResult for a normal search, got %v", eng.ResultFlag())
	}
}

// TestThinkFindsMateInOne exercises the mate-in-N search path on the
// fastest forced mate in chess (1.f3 e5 2.g4 Qh4#), with Black to move.
func TestThinkFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(DefaultOptions())
	move := eng.Think(pos, UCILimits{Depth: 3})
	if move == board.NoMove {
		t.Fatal("expected a move, got NoMove")
	}
	if move.From() != board.D8 || move.To() != board.H4 {
		t.Errorf("expected Qd8-h4#, got %s", move.String())
	}
}

// TestThinkFindsMateInTwoTactic is the curated Mate-in-2 fixture: Black
// to move finds Qd1+, the forcing move that starts the mating sequence.
// The mating line (Qd1+ Kxd1 Bg4+ K moves Rd1#) is five plies long, and the
// search sees the mate only when it reaches the mated side's node with
// depth left, so it needs depth 6.
func TestThinkFindsMateInTwoTactic(t *testing.T) {
	pos, err := board.ParseFEN("1k1r4/pp1b1R2/3q2pp/4p3/2B5/4Q3/PPP2B2/2K5 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(DefaultOptions())
	move := eng.Think(pos, UCILimits{Depth: 6})
	if move == board.NoMove {
		t.Fatal("expected a move, got NoMove")
	}
	if move.From() != board.D6 || move.To() != board.D1 {
		t.Errorf("expected Qd6-d1+, got %s", move.String())
	}
}

func TestThinkDetectsStalemate(t *testing.T) {
	// Classic stalemate: Black king on a8 has no legal moves.
	pos, err := board.ParseFEN("k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(DefaultOptions())
	move := eng.Think(pos, UCILimits{Depth: 4})
	if move != board.NoMove {
		t.Errorf("expected NoMove on stalemate, got %s", move.String())
	}
	if eng.ResultFlag() != Stalemate {
		t.Errorf("expected Stalemate flag, got %v", eng.ResultFlag())
	}
}

func TestEvaluateSymmetry(t *testing.T) {
	// Startpos is exactly symmetric except for the side-to-move tempo
	// bonus, which the evaluator applies to whoever is on move.
	pos := board.NewPosition()
	eng := NewEngine(DefaultOptions())
	if score := eng.Evaluate(pos); score != tempoBonus {
		t.Errorf("expected startpos score to be the tempo bonus (%d), got %d", tempoBonus, score)
	}
}

func TestClockAllocTimeInfinite(t *testing.T) {
	var c Clock
	c.AllocTime(UCILimits{Infinite: true}, board.White)
	if c.AllocatedTime() != Unlimited {
		t.Errorf("expected Unlimited under infinite, got %v", c.AllocatedTime())
	}
	if c.Extensible() {
		t.Error("infinite search should not be extensible")
	}
}

func TestClockAllocTimeSuddenDeath(t *testing.T) {
	var c Clock
	// 20 minutes a side: allocated = 1200s/50 = 24s, clears the 15s
	// extensible threshold.
	limits := UCILimits{Time: [2]time.Duration{20 * time.Minute, 20 * time.Minute}}
	c.AllocTime(limits, board.White)

	want := 20 * time.Minute / 50
	if c.AllocatedTime() != want {
		t.Errorf("expected allocated time %v, got %v", want, c.AllocatedTime())
	}
	if !c.Extensible() {
		t.Error("expected a 15s+ budget to be extensible")
	}

	c.ExtendTime(5)
	if c.AllocatedTime() != want+500*time.Millisecond {
		t.Errorf("expected extension to add 500ms, got %v", c.AllocatedTime())
	}
	if c.Extensible() {
		t.Error("a single extend_time call should consume the extension")
	}
}

func TestClockAllocTimeNotExtensibleUnderThreshold(t *testing.T) {
	var c Clock
	// 20 seconds a side: allocated = 400ms, well under the 15s threshold.
	limits := UCILimits{Time: [2]time.Duration{20 * time.Second, 20 * time.Second}}
	c.AllocTime(limits, board.White)

	if c.Extensible() {
		t.Error("expected a 400ms budget to not be extensible")
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1) // 1MB

	pos := board.NewPosition()

	_, _, found := pt.Probe(pos.PawnKey)
	if found {
		t.Error("expected cache miss on first probe")
	}

	pt.Store(pos.PawnKey, -15, -20)

	mg, eg, found := pt.Probe(pos.PawnKey)
	if !found {
		t.Error("expected cache hit after store")
	}
	if mg != -15 || eg != -20 {
		t.Errorf("wrong values: got mg=%d, eg=%d, want -15, -20", mg, eg)
	}

	oldKey := pos.PawnKey
	move := board.NewMove(board.E2, board.E4)
	undo := pos.MakeMove(move)
	if pos.PawnKey == oldKey {
		t.Error("PawnKey should change when a pawn moves")
	}

	pos.UnmakeMove(move, undo)
	if pos.PawnKey != oldKey {
		t.Error("PawnKey should be restored on unmake")
	}
}
