// Package board implements the 5x5 tile-merging board engine: sliding,
// merging, obstacle segmentation and tile spawning. All functions are pure
// over the Board value; the only mutable piece is the caller-owned IDSource.
package board

import (
	"math/rand"
	"sort"
	"time"
)

// Size is the board dimension. Boards are always Size x Size.
const Size = 5

// Kind classifies a tile's gameplay behavior.
type Kind int

const (
	// KindNormal tiles slide and merge with equal-value normal tiles.
	KindNormal Kind = iota
	// KindBlockX tiles slide like normal tiles but never merge.
	KindBlockX
	// KindBlockHard tiles never move and never merge. They split a line
	// into independent segments.
	KindBlockHard
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindBlockX:
		return "xblock"
	case KindBlockHard:
		return "hardblock"
	default:
		return "unknown"
	}
}

// Tile is a single occupant of a board cell.
//
// Spawned and Merged are one-turn render hints, cleared at the start of
// every move. Ghost marks the two pre-merge tiles retained at the merge
// destination for one frame of client animation; ghost tiles carry no
// gameplay weight and are excluded from occupancy and adjacency checks.
type Tile struct {
	ID      int64 `json:"id"`
	Value   int   `json:"value"`
	Row     int   `json:"row"`
	Col     int   `json:"col"`
	Kind    Kind  `json:"kind,omitempty"`
	Spawned bool  `json:"spawned,omitempty"`
	Merged  bool  `json:"merged,omitempty"`
	Ghost   bool  `json:"ghost,omitempty"`
}

// Board is the unordered tile collection of one player's grid. At rest, at
// most one non-ghost tile occupies a given (row, col). Boards are kept
// sorted by tile ID for stable serialization.
type Board []Tile

// Cell addresses a single grid position.
type Cell struct {
	Row int
	Col int
}

// IDSource hands out monotonically increasing tile identities. Identities
// only need to be unique within one match, so each match owns its own
// source rather than sharing a process-wide counter.
type IDSource struct {
	next int64
}

// Next returns the next unused tile identity.
func (s *IDSource) Next() int64 {
	s.next++
	return s.next
}

// Active returns the board without ghost tiles.
func Active(b Board) Board {
	out := make(Board, 0, len(b))
	for _, t := range b {
		if !t.Ghost {
			out = append(out, t)
		}
	}
	return out
}

// EmptyCells returns all unoccupied cells in row-major order. Ghost tiles
// do not occupy cells.
func EmptyCells(b Board) []Cell {
	var occ [Size][Size]bool
	for _, t := range b {
		if !t.Ghost {
			occ[t.Row][t.Col] = true
		}
	}
	var out []Cell
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !occ[r][c] {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}

// TileAt returns the non-ghost tile at the given cell, if any.
func TileAt(b Board, row, col int) (Tile, bool) {
	for _, t := range b {
		if !t.Ghost && t.Row == row && t.Col == col {
			return t, true
		}
	}
	return Tile{}, false
}

// MaxValue returns the largest normal-tile value on the board, 0 if none.
func MaxValue(b Board) int {
	maxVal := 0
	for _, t := range b {
		if !t.Ghost && t.Kind == KindNormal && t.Value > maxVal {
			maxVal = t.Value
		}
	}
	return maxVal
}

// HasMoves reports whether the player can still move: an empty cell exists,
// or two orthogonally adjacent normal tiles share a value. Obstacle tiles
// never contribute a legal move.
func HasMoves(b Board) bool {
	var grid [Size][Size]*Tile
	count := 0
	for i := range b {
		t := &b[i]
		if t.Ghost {
			continue
		}
		grid[t.Row][t.Col] = t
		count++
	}
	if count < Size*Size {
		return true
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			t := grid[r][c]
			if t == nil || t.Kind != KindNormal {
				continue
			}
			if c+1 < Size {
				if n := grid[r][c+1]; n != nil && n.Kind == KindNormal && n.Value == t.Value {
					return true
				}
			}
			if r+1 < Size {
				if n := grid[r+1][c]; n != nil && n.Kind == KindNormal && n.Value == t.Value {
					return true
				}
			}
		}
	}
	return false
}

// New deals a fresh match board: two starting tiles drawn from the match's
// shared RNG, in the same draw order as ApplyMove spawns.
func New(rng *rand.Rand, ids *IDSource) Board {
	var b Board
	for i := 0; i < 2; i++ {
		b = spawn(b, rng, ids)
	}
	return b
}

// NewPreview deals a board from throwaway randomness. Only suitable for
// non-match preview boards; match boards must come from New with the
// match's shared RNG.
func NewPreview(ids *IDSource) Board {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return New(rng, ids)
}

// spawn places one new tile (2 with probability 0.9, else 4) on a uniformly
// random empty cell. No-op on a full board.
func spawn(b Board, rng *rand.Rand, ids *IDSource) Board {
	empties := EmptyCells(b)
	if len(empties) == 0 {
		return b
	}
	cell := empties[rng.Intn(len(empties))]
	value := 2
	if rng.Float64() >= 0.9 {
		value = 4
	}
	return append(b, Tile{
		ID:      ids.Next(),
		Value:   value,
		Row:     cell.Row,
		Col:     cell.Col,
		Spawned: true,
	})
}

// PlaceObstacle puts an obstacle tile of the given kind on a uniformly
// random empty cell, drawing from rng. Returns the board unchanged when no
// empty cell exists.
func PlaceObstacle(b Board, kind Kind, rng *rand.Rand, ids *IDSource) Board {
	empties := EmptyCells(b)
	if len(empties) == 0 {
		return b
	}
	cell := empties[rng.Intn(len(empties))]
	return append(b, Tile{
		ID:      ids.Next(),
		Row:     cell.Row,
		Col:     cell.Col,
		Kind:    kind,
		Spawned: true,
	})
}

func sortByID(b Board) {
	sort.Slice(b, func(i, j int) bool { return b[i].ID < b[j].ID })
}
