package board

import "testing"

// TestInsufficientMaterial checks the draw/non-draw boundary for bare-king
// and single-minor-piece endings, including the same-color-bishop case.
func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"K vs K", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", true},
		{"K+B vs K", "8/8/4k3/8/8/3KB3/8/8 w - - 0 1", true},
		{"K+N vs K", "8/8/4k3/8/8/3KN3/8/8 w - - 0 1", true},
		{"K+B vs K+B same color", "8/8/3bk3/8/8/3KB3/8/8 w - - 0 1", true},
		{"K+B vs K+B opposite color", "8/8/4k1b1/8/8/3KB3/8/8 w - - 0 1", false},
		{"K+R vs K is not a draw", "8/8/4k3/8/8/3KR3/8/8 w - - 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := pos.IsInsufficientMaterial(); got != tc.want {
				t.Errorf("%s: IsInsufficientMaterial() = %v, want %v", tc.fen, got, tc.want)
			}
		})
	}
}

// TestFiftyMoveDraw checks the fifty-move-clock boundary.
func TestFiftyMoveDraw(t *testing.T) {
	pos, err := ParseFEN("8/8/4k3/8/8/3KR3/8/8 w - - 100 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !pos.IsDraw() {
		t.Error("expected HalfMoveClock=100 to be a draw")
	}
}
