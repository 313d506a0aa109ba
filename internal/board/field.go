package board

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

// Field is the ground-truth minefield the agent plays against. The agent
// never reads Grid directly; it only sees neighbor mine counts through
// NeighborMineCount, one per revealed cell.
//
// Fields are exported for gob round trips through session storage.
type Field struct {
	GameParams
	Grid    []bool
	Flagged knowledge.CellSet
}

func NewField(params GameParams, r *rand.Rand) (*Field, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	w, h, mineCount := params.Unpack()
	grid := make([]bool, w*h)

	/*
	 * Write down every position, then pick mineCount off the list at
	 * random.
	 */
	candidates := make([]int, w*h)
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	return &Field{
		GameParams: params,
		Grid:       grid,
		Flagged:    knowledge.CellSet{},
	}, nil
}

func DecodeField(buf []byte) (*Field, error) {
	var f Field
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Field) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Field) Dimensions() (height, width int) {
	return f.Height, f.Width
}

func (f *Field) IsMine(c knowledge.Cell) bool {
	return f.PointInBounds(c.X, c.Y) && f.Grid[c.Y*f.Width+c.X]
}

// NeighborMineCount reports how many of c's in-bounds neighbors hold
// mines, c itself excluded.
func (f *Field) NeighborMineCount(c knowledge.Cell) (int, error) {
	if !f.PointInBounds(c.X, c.Y) {
		return 0, fmt.Errorf("cell %s outside %dx%d field", c, f.Width, f.Height)
	}
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := c.X+dx, c.Y+dy
			if f.PointInBounds(x, y) && f.Grid[y*f.Width+x] {
				n++
			}
		}
	}
	return n, nil
}

// Flag marks c as a found mine. Flagging is how the agent reports its
// mine deductions back to the field; Won checks them against the truth.
func (f *Field) Flag(c knowledge.Cell) error {
	if !f.PointInBounds(c.X, c.Y) {
		return fmt.Errorf("cell %s outside %dx%d field", c, f.Width, f.Height)
	}
	f.Flagged.Add(c)
	return nil
}

// Won reports whether every mine is flagged and nothing else is. A field
// with no mines has nothing to flag and is only solved by opening every
// cell, so it is never won here.
func (f *Field) Won() bool {
	if f.MineCount == 0 || len(f.Flagged) != f.MineCount {
		return false
	}
	for c := range f.Flagged {
		if !f.IsMine(c) {
			return false
		}
	}
	return true
}

// MineCells returns the positions of all mines. Test and presentation
// helper; the agent must not consult it.
func (f *Field) MineCells() knowledge.CellSet {
	out := knowledge.CellSet{}
	for i, mine := range f.Grid {
		if mine {
			out.Add(knowledge.Cell{X: i % f.Width, Y: i / f.Width})
		}
	}
	return out
}

func (f *Field) String() string {
	var b strings.Builder
	for y := range f.Height {
		for x := range f.Width {
			if f.Grid[y*f.Width+x] {
				fmt.Fprint(&b, "* ")
			} else {
				fmt.Fprint(&b, "- ")
			}
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
