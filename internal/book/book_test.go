package book

import (
	"testing"

	"github.com/nilsgrau/chesscore/internal/board"
)

func TestBookMiss(t *testing.T) {
	b := New()
	pos := board.NewPosition()

	move, found := b.Probe(pos)
	if found {
		t.Error("expected book miss on empty book")
	}
	if move != board.NoMove {
		t.Errorf("expected NoMove on miss, got %s", move.String())
	}
}

func TestBookMakeUnmakeCursor(t *testing.T) {
	b := New()
	rootIdx := b.nodeAt(1)
	childIdx := b.nodeAt(2)
	b.nodes[rootIdx].Edges = []BookEdge{
		{Move: board.NewMove(board.E2, board.E4), Child: childIdx, Visits: 10, Wins: 6},
	}

	if _, ok := b.EdgesForKey(1); !ok {
		t.Fatal("expected root key to resolve")
	}
	if len(b.CurrentEdges()) != 1 {
		t.Fatalf("expected 1 edge at root, got %d", len(b.CurrentEdges()))
	}

	move, ok := b.BestMove()
	if !ok || move.From() != board.E2 || move.To() != board.E4 {
		t.Fatalf("expected e2e4 as best move, got %s, ok=%v", move.String(), ok)
	}

	if !b.MakeMove(0) {
		t.Fatal("MakeMove(0) should succeed from root")
	}
	if len(b.cursor) != 2 {
		t.Fatalf("expected cursor depth 2 after make_move, got %d", len(b.cursor))
	}

	b.UnmakeMove()
	if len(b.cursor) != 1 {
		t.Fatalf("expected cursor depth 1 after unmake_move, got %d", len(b.cursor))
	}
}

func TestBookBestMoveTieBreaksOnVisits(t *testing.T) {
	b := New()
	rootIdx := b.nodeAt(1)
	a := b.nodeAt(2)
	c := b.nodeAt(3)
	b.nodes[rootIdx].Edges = []BookEdge{
		{Move: board.NewMove(board.E2, board.E4), Child: a, Visits: 5, Wins: 2},
		{Move: board.NewMove(board.D2, board.D4), Child: c, Visits: 20, Wins: 8},
	}

	b.EdgesForKey(1)
	move, ok := b.BestMove()
	if !ok {
		t.Fatal("expected a book move")
	}
	// Win rates: 2/5=0.4, 8/20=0.4 -- tie broken by higher visit count.
	if move.From() != board.D2 || move.To() != board.D4 {
		t.Errorf("expected d2d4 on the visit-count tiebreak, got %s", move.String())
	}
}

func TestBookSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	orig := New()
	rootIdx := orig.nodeAt(100)
	childIdx := orig.nodeAt(200)
	orig.nodes[rootIdx].Games = 12
	orig.nodes[rootIdx].Wins = 7
	orig.nodes[rootIdx].Edges = []BookEdge{
		{Move: board.NewMove(board.E2, board.E4), Child: childIdx, Q: 0.6, Visits: 12, Wins: 7, Losses: 3, Draws: 2},
	}
	orig.nodes[childIdx].Games = 12

	if err := orig.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Size() != orig.Size() {
		t.Fatalf("expected %d nodes, got %d", orig.Size(), loaded.Size())
	}

	edges, ok := loaded.EdgesForKey(100)
	if !ok {
		t.Fatal("expected root key 100 to round-trip")
	}
	if len(edges) != 1 || edges[0].Visits != 12 || edges[0].Wins != 7 {
		t.Fatalf("edge stats did not round-trip: %+v", edges)
	}

	childKey := loaded.nodes[edges[0].Child].Key
	if childKey != 200 {
		t.Errorf("expected child key 200, got %d", childKey)
	}
}
