package board

// Zobrist hash keys for incremental position hashing. Per the design
// notes' fix for the source's global-mutable-array pattern: these tables
// are generated once, from a fixed seed, at process start, and are never
// mutated afterward. That makes position keys reproducible across runs
// (useful for transposition-table and perft cross-checks) without needing
// a real entropy source.
var (
	zobristPiece      [14][64]uint64 // [Piece tag][Square]; aggregate tags unused
	zobristEnPassant  [64]uint64     // one per en-passant target square
	zobristCastling   [16]uint64     // all 16 castling-rights combinations
	zobristSideToMove uint64         // XORed in when Black is to move
)

func init() {
	initZobrist()
}

// prng is a small xorshift64* generator used only to seed the Zobrist
// tables deterministically.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for _, tag := range []Piece{WPawn, BPawn, WKnight, BKnight, WBishop, BBishop,
		WRook, BRook, WQueen, BQueen, WKing, BKing} {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[tag][sq] = rng.next()
		}
	}

	for sq := A1; sq <= H8; sq++ {
		zobristEnPassant[sq] = rng.next()
	}

	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}

	zobristSideToMove = rng.next()
}

// ZobristPiece returns the key contribution of a piece sitting on a square.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return zobristPiece[NewPiece(pt, c)][sq]
}

// ZobristEnPassant returns the key contribution of an active en-passant
// target square.
func ZobristEnPassant(sq Square) uint64 {
	return zobristEnPassant[sq]
}

// ZobristCastling returns the key contribution of a castling-rights mask.
func ZobristCastling(cr CastlingRights) uint64 {
	return zobristCastling[cr]
}

// ZobristSideToMove returns the key contribution XORed in when Black is
// to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}
