package board

import "math/rand"

// Direction is a slide direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses a wire-format direction name.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	default:
		return 0, false
	}
}

func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

// lineIndex returns which of the Size lines perpendicular to d the tile
// belongs to.
func lineIndex(d Direction, t Tile) int {
	if d.horizontal() {
		return t.Row
	}
	return t.Col
}

// offset returns the tile's distance from the line's leading edge, the edge
// closest to the wall the slide targets.
func offset(d Direction, t Tile) int {
	switch d {
	case Left:
		return t.Col
	case Right:
		return Size - 1 - t.Col
	case Up:
		return t.Row
	default:
		return Size - 1 - t.Row
	}
}

// cellAt maps a (line, offset) pair back to grid coordinates.
func cellAt(d Direction, line, off int) (row, col int) {
	switch d {
	case Left:
		return line, off
	case Right:
		return line, Size - 1 - off
	case Up:
		return off, line
	default:
		return Size - 1 - off, line
	}
}

// Move slides the board in the given direction. It returns the new board,
// whether anything moved, and the score gained from merges.
//
// Hard blocks are immovable partition points: each line is compacted per
// segment between hard blocks, and tiles never cross one. Normal tiles
// merge pairwise in a single sweep from the leading edge; a tile created by
// a merge cannot merge again within the same move. X blocks slide but
// never merge. The two pre-merge tiles of every merge are retained as
// one-turn ghosts at the merge destination.
func Move(b Board, dir Direction, ids *IDSource) (Board, bool, int) {
	// Ghosts from the previous turn vanish; transient flags reset.
	src := make(Board, 0, len(b))
	for _, t := range b {
		if t.Ghost {
			continue
		}
		t.Spawned = false
		t.Merged = false
		src = append(src, t)
	}

	moved := false
	gain := 0
	out := make(Board, 0, len(src)+4)

	for line := 0; line < Size; line++ {
		var tiles []Tile  // movable tiles in this line, ordered by offset
		var hard []int    // offsets of hard blocks, ascending
		var hardTiles []Tile

		for off := 0; off < Size; off++ {
			r, c := cellAt(dir, line, off)
			for _, t := range src {
				if t.Row != r || t.Col != c {
					continue
				}
				if t.Kind == KindBlockHard {
					hard = append(hard, off)
					hardTiles = append(hardTiles, t)
				} else {
					tiles = append(tiles, t)
				}
			}
		}

		// Hard blocks stay where they are.
		out = append(out, hardTiles...)

		// Compact each segment between hard blocks independently.
		ti := 0
		hi := 0
		segStart := 0
		for segStart < Size {
			segEnd := Size
			if hi < len(hard) {
				segEnd = hard[hi]
				hi++
			}

			var placed []Tile
			var ghosts []Tile
			for ti < len(tiles) && offset(dir, tiles[ti]) < segEnd {
				cur := tiles[ti]
				ti++

				if n := len(placed); n > 0 &&
					cur.Kind == KindNormal &&
					placed[n-1].Kind == KindNormal &&
					placed[n-1].Value == cur.Value &&
					!placed[n-1].Merged {
					// Merge into the previously placed tile's cell.
					prev := placed[n-1]
					gain += prev.Value * 2
					merged := Tile{
						ID:     ids.Next(),
						Value:  prev.Value * 2,
						Row:    prev.Row,
						Col:    prev.Col,
						Merged: true,
					}
					placed[n-1] = merged
					moved = true

					ghosts = append(ghosts,
						Tile{ID: prev.ID, Value: prev.Value, Row: prev.Row, Col: prev.Col, Ghost: true},
						Tile{ID: cur.ID, Value: cur.Value, Kind: cur.Kind, Row: prev.Row, Col: prev.Col, Ghost: true},
					)
					continue
				}

				r, c := cellAt(dir, line, segStart+len(placed))
				if cur.Row != r || cur.Col != c {
					moved = true
				}
				cur.Row = r
				cur.Col = c
				placed = append(placed, cur)
			}

			out = append(out, placed...)
			out = append(out, ghosts...)
			segStart = segEnd + 1
		}
	}

	sortByID(out)
	return out, moved, gain
}

// MoveResult is the outcome of ApplyMove.
type MoveResult struct {
	Board      Board
	ScoreDelta int
	MergedMax  int // largest tile created by a merge this turn, 0 if none
	Moved      bool
}

// ApplyMove runs Move and, only if something moved, spawns one new tile on
// a random empty cell drawn from rng. MergedMax is the signal fed to the
// effect resolver. The spawn draw always precedes any effect-placement
// draw on the opponent board, which keeps the match's random sequence
// replayable from the seed and the ordered move list.
func ApplyMove(b Board, dir Direction, rng *rand.Rand, ids *IDSource) MoveResult {
	nb, moved, gain := Move(b, dir, ids)
	if !moved {
		return MoveResult{Board: nb}
	}

	mergedMax := 0
	for _, t := range nb {
		if t.Merged && t.Value > mergedMax {
			mergedMax = t.Value
		}
	}

	nb = spawn(nb, rng, ids)
	return MoveResult{Board: nb, ScoreDelta: gain, MergedMax: mergedMax, Moved: true}
}
