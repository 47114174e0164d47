package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece, independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return chars[pt]
}

// PieceValue is the material value of each piece type in centipawns,
// indexed by PieceType. Matches the base values of the evaluator (§6):
// P=100, N=310, B=330, R=500, Q=910. King has no material value.
var PieceValue = [7]int{100, 310, 330, 500, 910, 0, 0}

// Piece is the 14-valued piece tag. The first two values are aggregate
// color masks (the union of a side's piece bitboards), not individual
// pieces; they exist so Position can index its bitboard array uniformly
// by tag instead of keeping a separate occupancy array.
type Piece uint8

const (
	WPieces Piece = iota // aggregate: union of all White piece bitboards
	BPieces              // aggregate: union of all Black piece bitboards
	WPawn
	BPawn
	WRook
	BRook
	WKnight
	BKnight
	WBishop
	BBishop
	WQueen
	BQueen
	WKing
	BKing
	NoPiece Piece = 14
)

// pieceTypeOf maps a concrete (non-aggregate) Piece tag to its PieceType.
var pieceTypeOf = [14]PieceType{
	NoPieceType, NoPieceType, // WPieces, BPieces are aggregates, not types
	Pawn, Pawn,
	Rook, Rook,
	Knight, Knight,
	Bishop, Bishop,
	Queen, Queen,
	King, King,
}

// pieceColorOf maps a concrete Piece tag to its Color.
var pieceColorOf = [14]Color{
	NoColor, NoColor,
	White, Black,
	White, Black,
	White, Black,
	White, Black,
	White, Black,
	White, Black,
}

// NewPiece creates a Piece tag from a PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	switch pt {
	case Pawn:
		if c == White {
			return WPawn
		}
		return BPawn
	case Knight:
		if c == White {
			return WKnight
		}
		return BKnight
	case Bishop:
		if c == White {
			return WBishop
		}
		return BBishop
	case Rook:
		if c == White {
			return WRook
		}
		return BRook
	case Queen:
		if c == White {
			return WQueen
		}
		return BQueen
	case King:
		if c == White {
			return WKing
		}
		return BKing
	default:
		return NoPiece
	}
}

// AggregateOf returns the aggregate color-mask tag (WPieces/BPieces) for c.
func AggregateOf(c Color) Piece {
	if c == White {
		return WPieces
	}
	return BPieces
}

// Type returns the PieceType of the piece, or NoPieceType for an aggregate
// mask or NoPiece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return pieceTypeOf[p]
}

// Color returns the Color of the piece, or NoColor for an aggregate mask
// or NoPiece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return pieceColorOf[p]
}

// String returns the FEN character for the piece (uppercase for White,
// lowercase for Black), or a blank for aggregates/NoPiece.
func (p Piece) String() string {
	switch p {
	case WPawn:
		return "P"
	case BPawn:
		return "p"
	case WKnight:
		return "N"
	case BKnight:
		return "n"
	case WBishop:
		return "B"
	case BBishop:
		return "b"
	case WRook:
		return "R"
	case BRook:
		return "r"
	case WQueen:
		return "Q"
	case BQueen:
		return "q"
	case WKing:
		return "K"
	case BKing:
		return "k"
	default:
		return " "
	}
}

// PieceFromChar converts a FEN character to a Piece tag.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WPawn
	case 'N':
		return WKnight
	case 'B':
		return WBishop
	case 'R':
		return WRook
	case 'Q':
		return WQueen
	case 'K':
		return WKing
	case 'p':
		return BPawn
	case 'n':
		return BKnight
	case 'b':
		return BBishop
	case 'r':
		return BRook
	case 'q':
		return BQueen
	case 'k':
		return BKing
	default:
		return NoPiece
	}
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}

// pieceTypeBucket maps a PieceType to a small dense bucket index for
// per-piece-type tables; it is unexported and the evaluator does not call
// it. Kept as an explicit mapping
// function rather than arithmetic on raw piece-tag numerics (open question
// in the design notes: the source couples this to `(piece-2)/2`, which
// assumes a specific tag layout; this function does not).
func pieceTypeBucket(pt PieceType) int {
	switch pt {
	case Pawn:
		return 0
	case Knight:
		return 1
	case Bishop:
		return 2
	case Rook:
		return 3
	case Queen:
		return 4
	case King:
		return 5
	default:
		return -1
	}
}
