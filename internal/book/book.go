// Package book implements the opening book: a directed graph of positions
// reached during prior play, persisted to an embedded key-value store.
package book

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/nilsgrau/chesscore/internal/board"
)

// BookEdge is one outgoing transition from a BookNode: the move played,
// the index of the resulting BookNode in the graph, and the statistics
// accumulated across every game that took this transition.
type BookEdge struct {
	Move   board.Move
	Child  int // index into Book.nodes, -1 if not yet linked
	Q      float64
	Visits int
	Wins   int
	Losses int
	Draws  int
}

// WinRate returns Wins/Visits, or 0 for an edge never played.
func (e BookEdge) WinRate() float64 {
	if e.Visits == 0 {
		return 0
	}
	return float64(e.Wins) / float64(e.Visits)
}

// BookNode is one position in the book graph, keyed by its Zobrist hash.
type BookNode struct {
	Key    uint64
	Edges  []BookEdge
	Games  int
	Wins   int
	Losses int
	Draws  int
}

// Book is the in-memory opening book graph plus a cursor stack tracking
// descent from the root: make_move pushes, unmake_move pops, per the
// book-cursor state machine.
type Book struct {
	nodes  []*BookNode
	index  map[uint64]int
	cursor []*BookNode
}

// New creates an empty book graph with no cursor.
func New() *Book {
	return &Book{index: make(map[uint64]int)}
}

// nodeAt finds or creates the node for key, returning its index.
func (b *Book) nodeAt(key uint64) int {
	if idx, ok := b.index[key]; ok {
		return idx
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, &BookNode{Key: key})
	b.index[key] = idx
	return idx
}

// EdgesForKey probes the graph for key and, if found, pushes the matching
// node onto the cursor stack, returning its outgoing edges. Used when the
// engine's position changes by something other than a book move (a UCI
// `position` command), so the cursor can resynchronize to wherever the
// incoming position actually is in the graph.
func (b *Book) EdgesForKey(key uint64) ([]BookEdge, bool) {
	idx, ok := b.index[key]
	if !ok {
		return nil, false
	}
	node := b.nodes[idx]
	b.cursor = append(b.cursor, node)
	return node.Edges, true
}

// MakeMove pushes the child node referenced by the edge at edgeIndex in
// the current top-of-cursor node. Returns false if the cursor is empty,
// the index is out of range, or the edge has no linked child.
func (b *Book) MakeMove(edgeIndex int) bool {
	if len(b.cursor) == 0 {
		return false
	}
	top := b.cursor[len(b.cursor)-1]
	if edgeIndex < 0 || edgeIndex >= len(top.Edges) {
		return false
	}
	child := top.Edges[edgeIndex].Child
	if child < 0 || child >= len(b.nodes) {
		return false
	}
	b.cursor = append(b.cursor, b.nodes[child])
	return true
}

// UnmakeMove pops the cursor stack. A no-op on an empty stack.
func (b *Book) UnmakeMove() {
	if len(b.cursor) == 0 {
		return
	}
	b.cursor = b.cursor[:len(b.cursor)-1]
}

// ResetCursor clears the cursor stack (used by ucinewgame).
func (b *Book) ResetCursor() {
	b.cursor = nil
}

// CurrentEdges returns the outgoing edges of the current cursor top, or
// nil if the cursor is empty or the position has no book moves.
func (b *Book) CurrentEdges() []BookEdge {
	if len(b.cursor) == 0 {
		return nil
	}
	return b.cursor[len(b.cursor)-1].Edges
}

// BestMove picks the outgoing edge with the highest win rate, breaking
// ties by visit count, exactly as think's OwnBook step specifies. Returns
// NoMove, false when the current position has no book edges.
func (b *Book) BestMove() (board.Move, bool) {
	edges := b.CurrentEdges()
	if len(edges) == 0 {
		return board.NoMove, false
	}

	best := edges[0]
	for _, e := range edges[1:] {
		if e.WinRate() > best.WinRate() ||
			(e.WinRate() == best.WinRate() && e.Visits > best.Visits) {
			best = e
		}
	}
	return best.Move, true
}

// Probe is the convenience entry point think uses: probe by key and return
// the best move there; when the key is not in the graph it returns
// NoMove, false.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	if _, ok := b.EdgesForKey(pos.Hash); ok {
		return b.BestMove()
	}
	return board.NoMove, false
}

// Size returns the number of distinct positions in the graph.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.nodes)
}

// --- persistence -----------------------------------------------------

// edgeRecord is the gob-serializable form of a BookEdge: the child is
// addressed by its Zobrist key rather than a graph-local index, since
// indices are not stable across save/load.
type edgeRecord struct {
	Move     uint16 // board.Move is itself a uint16
	ChildKey uint64
	Q        float64
	Visits   int
	Wins     int
	Losses   int
	Draws    int
}

// BookRecord is the on-disk unit for one BookNode and its outgoing edges,
// gob-encoded and stored under its position's Zobrist key.
type BookRecord struct {
	Key    uint64
	Edges  []edgeRecord
	Games  int
	Wins   int
	Losses int
	Draws  int
}

func keyBytes(key uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], key)
	return buf[:]
}

// Save persists the in-memory graph to a badger/v4 database at dir,
// creating it if necessary.
func (b *Book) Save(dir string) error {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("book: open %s: %w", dir, err)
	}
	defer db.Close()

	return db.Update(func(txn *badger.Txn) error {
		for _, node := range b.nodes {
			rec := BookRecord{
				Key:    node.Key,
				Games:  node.Games,
				Wins:   node.Wins,
				Losses: node.Losses,
				Draws:  node.Draws,
			}
			for _, e := range node.Edges {
				childKey := uint64(0)
				if e.Child >= 0 && e.Child < len(b.nodes) {
					childKey = b.nodes[e.Child].Key
				}
				rec.Edges = append(rec.Edges, edgeRecord{
					Move:     uint16(e.Move),
					ChildKey: childKey,
					Q:        e.Q,
					Visits:   e.Visits,
					Wins:     e.Wins,
					Losses:   e.Losses,
					Draws:    e.Draws,
				})
			}

			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
				return err
			}
			if err := txn.Set(keyBytes(node.Key), buf.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load opens a badger/v4 database at dir read-only, reconstructs the
// in-memory BookNode/BookEdge graph from its BookRecords, and links edges
// to node indices by key lookup. A missing or corrupt database is
// reported to the caller, who is expected to continue without a book.
func Load(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir).WithReadOnly(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", dir, err)
	}
	defer db.Close()

	b := New()
	var records []BookRecord

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec BookRecord
			err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("book: read %s: %w", dir, err)
	}

	for _, rec := range records {
		b.nodeAt(rec.Key)
	}
	for _, rec := range records {
		idx := b.index[rec.Key]
		node := b.nodes[idx]
		node.Games, node.Wins, node.Losses, node.Draws = rec.Games, rec.Wins, rec.Losses, rec.Draws

		for _, e := range rec.Edges {
			childIdx, ok := b.index[e.ChildKey]
			if !ok {
				childIdx = b.nodeAt(e.ChildKey)
			}
			node.Edges = append(node.Edges, BookEdge{
				Move:   board.Move(e.Move),
				Child:  childIdx,
				Q:      e.Q,
				Visits: e.Visits,
				Wins:   e.Wins,
				Losses: e.Losses,
				Draws:  e.Draws,
			})
		}
	}

	return b, nil
}
