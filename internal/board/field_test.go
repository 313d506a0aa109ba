package board

import (
	"math/rand/v2"
	"testing"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

func TestNewFieldPlacesExactMineCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params GameParams
	}{
		{name: "9x9(10)", params: GameParams{Width: 9, Height: 9, MineCount: 10}},
		{name: "16x16(40)", params: GameParams{Width: 16, Height: 16, MineCount: 40}},
		{name: "30x16(99)", params: GameParams{Width: 30, Height: 16, MineCount: 99}},
		{name: "2x2(3)", params: GameParams{Width: 2, Height: 2, MineCount: 3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			f, err := NewField(test.params, r)
			if err != nil {
				t.Fatal(err)
			}
			got := 0
			for _, mine := range f.Grid {
				if mine {
					got++
				}
			}
			if got != test.params.MineCount {
				t.Errorf("placed %d mines, want %d", got, test.params.MineCount)
			}
		})
	}
}

func TestNewFieldRejectsBadParams(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for _, params := range []GameParams{
		{Width: 0, Height: 9, MineCount: 1},
		{Width: 9, Height: -1, MineCount: 1},
		{Width: 3, Height: 3, MineCount: 9},
		{Width: 3, Height: 3, MineCount: -1},
	} {
		if _, err := NewField(params, r); err == nil {
			t.Errorf("NewField(%+v) succeeded, want error", params)
		}
	}
}

func TestNeighborMineCount(t *testing.T) {
	t.Parallel()

	// 3x3 with mines at the corners.
	f := &Field{
		GameParams: GameParams{Width: 3, Height: 3, MineCount: 4},
		Grid: []bool{
			true, false, true,
			false, false, false,
			true, false, true,
		},
		Flagged: knowledge.CellSet{},
	}

	tests := []struct {
		cell knowledge.Cell
		want int
	}{
		{knowledge.Cell{X: 1, Y: 1}, 4},
		{knowledge.Cell{X: 1, Y: 0}, 2},
		{knowledge.Cell{X: 0, Y: 1}, 2},
		{knowledge.Cell{X: 0, Y: 0}, 0},
	}
	for _, test := range tests {
		got, err := f.NeighborMineCount(test.cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("NeighborMineCount(%s) = %d, want %d", test.cell, got, test.want)
		}
	}

	if _, err := f.NeighborMineCount(knowledge.Cell{X: 3, Y: 0}); err == nil {
		t.Error("out-of-bounds count must fail")
	}
}

func TestWon(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 7))
	f, err := NewField(GameParams{Width: 5, Height: 5, MineCount: 5}, r)
	if err != nil {
		t.Fatal(err)
	}

	if f.Won() {
		t.Fatal("fresh field cannot be won")
	}
	for c := range f.MineCells() {
		if err := f.Flag(c); err != nil {
			t.Fatal(err)
		}
	}
	if !f.Won() {
		t.Error("all mines flagged, field must be won")
	}

	var clear knowledge.Cell
	for y := range f.Height {
		for x := range f.Width {
			c := knowledge.Cell{X: x, Y: y}
			if !f.IsMine(c) {
				clear = c
			}
		}
	}
	if err := f.Flag(clear); err != nil {
		t.Fatal(err)
	}
	if f.Won() {
		t.Error("false flag must not count as a win")
	}
}

func TestWonMinelessField(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 7))
	f, err := NewField(GameParams{Width: 3, Height: 3, MineCount: 0}, r)
	if err != nil {
		t.Fatal(err)
	}

	// Zero flags trivially match zero mines; that must not be a win.
	if f.Won() {
		t.Error("mineless field must never be won by flagging")
	}
}

func TestFieldGobRoundTrip(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 4))
	f, err := NewField(GameParams{Width: 4, Height: 4, MineCount: 3}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Flag(f.MineCells().Slice()[0]); err != nil {
		t.Fatal(err)
	}

	buf, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeField(buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.GameParams != f.GameParams {
		t.Errorf("params %+v, want %+v", got.GameParams, f.GameParams)
	}
	if !got.MineCells().Equal(f.MineCells()) {
		t.Error("mines differ after round trip")
	}
	if !got.Flagged.Equal(f.Flagged) {
		t.Error("flags differ after round trip")
	}
}
