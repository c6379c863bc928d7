package effect

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/merge-duel/internal/board"
)

func TestDerive(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name      string
		mergedMax int
		want      Type
	}{
		{name: "no merge", mergedMax: 0, want: TypeNone},
		{name: "below every threshold", mergedMax: 64, want: TypeNone},
		{name: "x threshold exact", mergedMax: 128, want: TypeAddX},
		{name: "between thresholds", mergedMax: 256, want: TypeAddX},
		{name: "hard threshold exact", mergedMax: 512, want: TypeAddHard},
		{name: "above hard threshold", mergedMax: 2048, want: TypeAddHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.mergedMax, th)
			if len(got) != 1 {
				t.Fatalf("Derive(%d) returned %d effects, want exactly 1", tt.mergedMax, len(got))
			}
			if got[0].Type != tt.want {
				t.Errorf("Derive(%d) = %s, want %s", tt.mergedMax, got[0].Type, tt.want)
			}
		})
	}
}

func TestDeriveCustomThresholds(t *testing.T) {
	th := Thresholds{XAt: 32, HardAt: 64}

	if got := Derive(32, th); got[0].Type != TypeAddX {
		t.Errorf("Derive(32) = %s, want %s", got[0].Type, TypeAddX)
	}
	if got := Derive(64, th); got[0].Type != TypeAddHard {
		t.Errorf("Derive(64) = %s, want %s", got[0].Type, TypeAddHard)
	}
}

func TestDeriveDisabledTier(t *testing.T) {
	// A zero threshold disables the tier instead of always firing.
	th := Thresholds{XAt: 0, HardAt: 512}

	if got := Derive(256, th); got[0].Type != TypeNone {
		t.Errorf("Derive(256) with disabled X tier = %s, want %s", got[0].Type, TypeNone)
	}
}

func TestApplyPlacesObstacle(t *testing.T) {
	var ids board.IDSource
	rng := rand.New(rand.NewSource(5))
	b := board.Board{{ID: ids.Next(), Value: 2, Row: 0, Col: 0}}

	got := Apply(b, Derive(512, DefaultThresholds()), rng, &ids)

	hard := 0
	for _, tile := range got {
		if tile.Kind == board.KindBlockHard {
			hard++
		}
	}
	if hard != 1 {
		t.Errorf("expected exactly 1 hard block, got %d", hard)
	}
}

func TestApplyNoneIsNoop(t *testing.T) {
	var ids board.IDSource
	rng := rand.New(rand.NewSource(5))
	b := board.Board{{ID: ids.Next(), Value: 2, Row: 0, Col: 0}}

	got := Apply(b, Derive(0, DefaultThresholds()), rng, &ids)
	if len(got) != len(b) {
		t.Errorf("TypeNone effect changed the board: %d -> %d tiles", len(b), len(got))
	}
}

func TestApplyFullBoardDropsEffect(t *testing.T) {
	var ids board.IDSource
	var b board.Board
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			b = append(b, board.Tile{ID: ids.Next(), Value: 2, Row: r, Col: c})
		}
	}

	rng := rand.New(rand.NewSource(5))
	got := Apply(b, Derive(512, DefaultThresholds()), rng, &ids)
	if len(got) != len(b) {
		t.Errorf("full board gained an obstacle: %d -> %d tiles", len(b), len(got))
	}
}
