package engine

import (
	"time"

	"github.com/nilsgrau/chesscore/internal/board"
)

// UCILimits contains UCI time control parameters, as parsed from a `go`
// command line.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // search_for_time_x: fixed time per move
	Depth     int              // search_to_depth_x
	Nodes     uint64           // search_x_nodes
	Infinite  bool             // search until stopped
	Ponder    bool             // ponder mode
}

// Unlimited is the allocated-time sentinel for depth/node/ponder/infinite
// searches, which stop on their own condition rather than a clock.
const Unlimited = -1 * time.Millisecond

// Clock allocates and tracks the time budget for one search, exactly per
// §4.8's alloc_time/extend_time/has_exceeded_time contract. Unlike the
// stability-aware estimator this replaces, it carries no notion of best
// move stability — order_moves and iterative deepening already do the
// useful work; the clock's job is just enforcing the one allowed
// extension.
type Clock struct {
	allocated  time.Duration
	extensible bool
	startTime  time.Time
}

// NewClock creates an unstarted Clock.
func NewClock() *Clock {
	return &Clock{}
}

// AllocTime computes the time budget for `us` to move, per §4.8, and
// starts the clock running.
func (c *Clock) AllocTime(limits UCILimits, us board.Color) {
	c.startTime = time.Now()

	if limits.Depth > 0 || limits.Nodes > 0 || limits.Ponder || limits.Infinite {
		c.allocated = Unlimited
		c.extensible = false
		return
	}

	if limits.MoveTime > 0 {
		c.allocated = limits.MoveTime
		c.extensible = false
		return
	}

	sideTime := limits.Time[us]
	c.allocated = sideTime / 50
	c.extensible = c.allocated >= 15*time.Second
}

// ExtendTime adds n*100ms to the budget if this search has not already
// used its one allowed extension.
func (c *Clock) ExtendTime(n int) {
	if !c.extensible {
		return
	}
	c.allocated += time.Duration(n) * 100 * time.Millisecond
	c.extensible = false
}

// HasExceededTime reports whether elapsed time has reached the allocated
// budget. It does not stop the clock: Elapsed keeps counting after it.
// An Unlimited budget never expires.
func (c *Clock) HasExceededTime() bool {
	if c.allocated == Unlimited {
		return false
	}
	return time.Since(c.startTime) >= c.allocated
}

// Elapsed returns the time elapsed since AllocTime was called.
func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// AllocatedTime returns the current budget (after any extension).
func (c *Clock) AllocatedTime() time.Duration {
	return c.allocated
}

// Extensible reports whether a single extend_time call is still available.
func (c *Clock) Extensible() bool {
	return c.extensible
}
