package engine

import (
	"log"
	"time"

	"github.com/nilsgrau/chesscore/internal/board"
	"github.com/nilsgrau/chesscore/internal/book"
)

// SearchInfo reports progress for one completed iterative-deepening
// iteration of think.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille of hash table used
}

// Style biases move selection; accepted and stored but, per the
// Non-goals, does not currently change search behavior on its own.
type Style int

const (
	Balanced Style = iota
	Aggressive
	Defensive
)

// EngineOptions is the in-process form of the UCI option table.
type EngineOptions struct {
	HashMB           int
	OwnBook          bool
	UCIShowCurrLine  bool
	UCILimitStrength bool
	UCIElo           int
	Style            Style
	// Threads is accepted and parsed but honored as a no-op floor of 1:
	// search itself stays single-threaded.
	Threads int
}

// DefaultOptions returns the engine's out-of-the-box option values.
func DefaultOptions() EngineOptions {
	return EngineOptions{HashMB: 64, OwnBook: true, Threads: 1}
}

// ResultFlag classifies how the most recent think call concluded.
type ResultFlag int

const (
	NoResult ResultFlag = iota
	WhiteIsMated
	BlackIsMated
	Draw
	Stalemate
)

func (f ResultFlag) String() string {
	switch f {
	case WhiteIsMated:
		return "WhiteIsMated"
	case BlackIsMated:
		return "BlackIsMated"
	case Draw:
		return "Draw"
	case Stalemate:
		return "Stalemate"
	default:
		return "NoResult"
	}
}

// Engine owns exactly one Searcher, one TranspositionTable, one
// PawnTable, and an optional opening book. Per the single-search-worker
// concurrency model, Engine.Think runs to completion on whatever
// goroutine calls it; the UCI layer is responsible for launching that
// call on its own goroutine so stop/quit stay responsive.
type Engine struct {
	tt        *TranspositionTable
	pawnTable *PawnTable
	searcher  *Searcher
	book      *book.Book

	options EngineOptions
	clock   Clock

	resultFlag ResultFlag

	OnInfo func(SearchInfo)
}

// NewEngine constructs an Engine with the given options, sizing its
// transposition table from options.HashMB.
func NewEngine(opts EngineOptions) *Engine {
	if opts.HashMB <= 0 {
		opts.HashMB = 64
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}

	tt := NewTranspositionTable(opts.HashMB)
	e := &Engine{
		tt:        tt,
		pawnTable: NewPawnTable(1),
		options:   opts,
	}
	e.searcher = NewSearcher(tt, e.pawnTable)

	log.Printf("[Engine] ready hash=%dMB ownbook=%v threads=%d", opts.HashMB, opts.OwnBook, opts.Threads)
	return e
}

// Options returns the engine's current option set.
func (e *Engine) Options() EngineOptions {
	return e.options
}

// SetOptions replaces the engine's option set. Hash resizing is not
// applied retroactively to the live table; a new Engine is required for
// that, matching most UCI engines' actual behavior despite GUIs that
// send "setoption name Hash" mid-game.
func (e *Engine) SetOptions(opts EngineOptions) {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	e.options = opts
}

// LoadBook opens a book database directory. A failure is reported as a
// BookIo EngineError; per §7, the engine simply continues without a
// book rather than treating this as fatal.
func (e *Engine) LoadBook(dir string) error {
	b, err := book.Load(dir)
	if err != nil {
		log.Printf("[Book] load failed, continuing without a book: %v", err)
		return newError(BookIo, err)
	}
	e.book = b
	log.Printf("[Book] loaded %d positions from %s", b.Size(), dir)
	return nil
}

// HasBook reports whether an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// ResetBookCursor resets the book's cursor stack to empty, called on
// ucinewgame.
func (e *Engine) ResetBookCursor() {
	if e.book != nil {
		e.book.ResetCursor()
	}
}

// Think implements the core think contract: reset counters, allocate
// time from the clock, consult the opening book, else run iterative
// deepening calling search_root at each depth and emitting one progress
// record per completed iteration, stopping when check_stop_search
// fires. Returns the best move from the deepest completed iteration.
func (e *Engine) Think(pos *board.Position, limits UCILimits) board.Move {
	e.resultFlag = NoResult
	e.searcher.Reset()
	e.clock.AllocTime(limits, pos.SideToMove)

	if moves := pos.GenerateLegalMoves(); moves.Len() == 0 {
		if pos.InCheck() {
			if pos.SideToMove == board.White {
				e.resultFlag = WhiteIsMated
			} else {
				e.resultFlag = BlackIsMated
			}
		} else {
			e.resultFlag = Stalemate
		}
		return board.NoMove
	}
	if pos.IsDraw() {
		e.resultFlag = Draw
		return board.NoMove
	}

	if e.options.OwnBook && e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			log.Printf("[Engine] book move %s", move.String())
			return move
		}
	}

	e.tt.NewSearch()

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if e.checkStopSearch(depth, limits) {
			break
		}

		move, score := e.searcher.Search(pos, depth)
		if e.searcher.IsStopped() {
			break
		}

		if move != board.NoMove {
			bestMove = move
			bestScore = score
			bestPV = e.searcher.GetPV()
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    e.searcher.Nodes(),
				Time:     time.Since(startTime),
				PV:       bestPV,
				HashFull: e.tt.HashFull(),
			})
		}

		if bestScore > MateScore-100 || bestScore < -MateScore+100 {
			break
		}

		// A single stability-motivated extension, once per search, when
		// the clock allows it and we're already past half the budget.
		if depth == 4 && e.clock.Extensible() && e.clock.Elapsed() > e.clock.AllocatedTime()/2 {
			e.clock.ExtendTime(5)
		}
	}

	return bestMove
}

// checkStopSearch is check_stop_search: hard depth cap, external stop
// (the searcher's own cooperative flag, set by Engine.Stop), the
// sudden-death clock budget, and an explicit depth limit. Returns false
// whenever infinite/ponder is set and none of the hard stops fire.
func (e *Engine) checkStopSearch(depth int, limits UCILimits) bool {
	if depth > MaxPly {
		return true
	}
	if e.searcher.IsStopped() {
		return true
	}
	if limits.Infinite || limits.Ponder {
		return false
	}
	if limits.Depth > 0 && depth > limits.Depth {
		return true
	}
	return e.clock.HasExceededTime()
}

// ResultFlag returns the outcome classification of the most recent
// think call.
func (e *Engine) ResultFlag() ResultFlag {
	return e.resultFlag
}

// Stop signals the running search to stop at its next cooperative
// check point.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table and pawn table, called on
// ucinewgame.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.pawnTable.Clear()
	e.ResetBookCursor()
}

// Perft performs a perft test: a recursive legal-move leaf counter.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position relative to the
// side to move (see the package-level Evaluate), not from White's
// perspective.
func (e *Engine) Evaluate(pos *board.Position) int {
	return EvaluateWithPawnTable(pos, e.pawnTable)
}

// ScoreToString converts a centipawn score to a human-readable string,
// switching to "Mate in N"/"Mated in N" near the mate bound.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// itoa avoids pulling in fmt for a single integer-to-string conversion.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
