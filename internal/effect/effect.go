// Package effect maps one player's merge outcome onto the opponent's
// board. Deriving effects is a total, deterministic function of the
// merge-magnitude signal; applying them consumes the match's shared RNG so
// the whole match stays replayable from its seed.
package effect

import (
	"math/rand"

	"github.com/vovakirdan/merge-duel/internal/board"
)

// Type classifies a cross-board effect.
type Type string

const (
	// TypeNone is the harmless effect produced when no threshold fires.
	TypeNone Type = "none"
	// TypeAddX injects a sliding, non-merging X block.
	TypeAddX Type = "addX"
	// TypeAddHard injects an immovable hard block.
	TypeAddHard Type = "addHard"
)

// Effect is a single obstruction applied to the opponent's board.
type Effect struct {
	Type  Type `json:"type"`
	Count int  `json:"count,omitempty"`
}

// Thresholds is the tunable policy table: the merged-tile value at which
// each obstacle tier fires. Tiers are mutually exclusive and evaluated
// highest first.
type Thresholds struct {
	XAt    int `yaml:"x_at"`
	HardAt int `yaml:"hard_at"`
}

// DefaultThresholds returns the standard policy: X block at 128, hard
// block at 512.
func DefaultThresholds() Thresholds {
	return Thresholds{XAt: 128, HardAt: 512}
}

// Derive maps the largest merged tile of a move to exactly one effect.
// A move below every threshold still yields a TypeNone effect, so the
// result is always non-empty and order-independent to apply.
func Derive(mergedMax int, th Thresholds) []Effect {
	switch {
	case th.HardAt > 0 && mergedMax >= th.HardAt:
		return []Effect{{Type: TypeAddHard, Count: 1}}
	case th.XAt > 0 && mergedMax >= th.XAt:
		return []Effect{{Type: TypeAddX, Count: 1}}
	default:
		return []Effect{{Type: TypeNone}}
	}
}

// Apply places each effect's obstacles on uniformly random empty cells of
// the opponent board, drawing from the match's shared rng. Placement
// requires a genuinely empty cell; when the board is full the effect is
// silently dropped and obstruction stays best effort.
func Apply(b board.Board, effects []Effect, rng *rand.Rand, ids *board.IDSource) board.Board {
	for _, e := range effects {
		var kind board.Kind
		switch e.Type {
		case TypeAddX:
			kind = board.KindBlockX
		case TypeAddHard:
			kind = board.KindBlockHard
		default:
			continue
		}
		for i := 0; i < e.Count; i++ {
			b = board.PlaceObstacle(b, kind, rng, ids)
		}
	}
	return b
}
