package knowledge

import (
	"errors"
	"testing"
)

func TestMarkingIsIdempotent(t *testing.T) {
	t.Parallel()

	kb := New(4, 4)
	if err := kb.MarkSafe(Cell{1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := kb.MarkSafe(Cell{1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := kb.MarkMine(Cell{2, 2}); err != nil {
		t.Fatal(err)
	}
	if err := kb.MarkMine(Cell{2, 2}); err != nil {
		t.Fatal(err)
	}

	if got := kb.Safes(); !got.Equal(cells(Cell{1, 1})) {
		t.Errorf("safes = %s, want {1:1}", got)
	}
	if got := kb.Mines(); !got.Equal(cells(Cell{2, 2})) {
		t.Errorf("mines = %s, want {2:2}", got)
	}
}

func TestConflictingMarksAreContradictions(t *testing.T) {
	t.Parallel()

	kb := New(4, 4)
	if err := kb.MarkSafe(Cell{1, 1}); err != nil {
		t.Fatal(err)
	}

	err := kb.MarkMine(Cell{1, 1})
	var contra *Contradiction
	if !errors.As(err, &contra) {
		t.Fatalf("MarkMine on a safe cell returned %v, want *Contradiction", err)
	}
	if contra.Cell == nil || *contra.Cell != (Cell{1, 1}) {
		t.Errorf("contradiction did not name the offending cell: %v", contra)
	}
}

func TestObserveOutOfBounds(t *testing.T) {
	t.Parallel()

	kb := New(3, 3)
	err := kb.Observe(Cell{3, 0}, 0)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Observe out of bounds returned %v, want ErrOutOfBounds", err)
	}
	if len(kb.MovesMade()) != 0 || len(kb.Safes()) != 0 {
		t.Error("rejected observation must not mutate state")
	}
}

func TestObserveZeroCount(t *testing.T) {
	t.Parallel()

	kb := New(8, 8)
	if err := kb.Observe(Cell{1, 1}, 0); err != nil {
		t.Fatal(err)
	}

	want := cells(
		Cell{0, 0}, Cell{1, 0}, Cell{2, 0},
		Cell{0, 1}, Cell{2, 1},
		Cell{0, 2}, Cell{1, 2}, Cell{2, 2},
	)
	if got := kb.SafeMoves(); !got.Equal(want) {
		t.Errorf("SafeMoves() = %s, want %s", got, want)
	}
}

func TestSafeMovesIsPure(t *testing.T) {
	t.Parallel()

	kb := New(8, 8)
	if err := kb.Observe(Cell{1, 1}, 0); err != nil {
		t.Fatal(err)
	}

	first := kb.SafeMoves()
	first.Delete(Cell{0, 0})
	second := kb.SafeMoves()
	if !second.Has(Cell{0, 0}) {
		t.Error("SafeMoves() must not expose internal state")
	}
}

func TestSubsetResolution(t *testing.T) {
	t.Parallel()

	// {0:0 0:1 1:0} = 1 and {0:0 0:1} = 1 must derive {1:0} = 0.
	kb := New(4, 4)
	kb.insert(NewSentence(cells(Cell{0, 0}, Cell{1, 0}, Cell{0, 1}), 1))
	kb.insert(NewSentence(cells(Cell{0, 0}, Cell{1, 0}), 1))

	for {
		propagated, err := kb.propagate()
		if err != nil {
			t.Fatal(err)
		}
		resolved, err := kb.resolve()
		if err != nil {
			t.Fatal(err)
		}
		if !propagated && !resolved {
			break
		}
	}

	if !kb.KnownSafe(Cell{0, 1}) {
		t.Errorf("cell 0:1 must be proven safe, safes = %s", kb.Safes())
	}
}

func TestCornerScenario(t *testing.T) {
	t.Parallel()

	// One mine among the corner's three neighbors, then the same single
	// mine constrains (0,1)'s neighborhood. The difference sentence must
	// prove the cells exclusive to the second observation safe with no
	// third observation.
	kb := New(4, 4)
	if err := kb.Observe(Cell{0, 0}, 1); err != nil {
		t.Fatal(err)
	}
	if err := kb.Observe(Cell{1, 0}, 1); err != nil {
		t.Fatal(err)
	}

	for _, c := range []Cell{{2, 0}, {2, 1}} {
		if !kb.KnownSafe(c) {
			t.Errorf("cell %s must be proven safe, safes = %s", c, kb.Safes())
		}
	}
}

func TestObserveFindsForcedMine(t *testing.T) {
	t.Parallel()

	// 2x2 board, corner reports every neighbor mined.
	kb := New(2, 2)
	if err := kb.Observe(Cell{0, 0}, 3); err != nil {
		t.Fatal(err)
	}

	want := cells(Cell{1, 0}, Cell{0, 1}, Cell{1, 1})
	if got := kb.Mines(); !got.Equal(want) {
		t.Errorf("Mines() = %s, want %s", got, want)
	}
}

func TestInvariantsAfterObservations(t *testing.T) {
	t.Parallel()

	// A consistent 4x4 game with mines at 3:0 and 0:3.
	mines := cells(Cell{3, 0}, Cell{0, 3})
	kb := New(4, 4)

	observations := []struct {
		cell  Cell
		count int
	}{
		{Cell{1, 1}, 0},
		{Cell{2, 2}, 0},
		{Cell{1, 2}, 1},
		{Cell{2, 1}, 1},
		{Cell{0, 0}, 0},
		{Cell{3, 3}, 0},
	}
	for _, o := range observations {
		if err := kb.Observe(o.cell, o.count); err != nil {
			t.Fatalf("Observe(%s, %d): %v", o.cell, o.count, err)
		}

		resolvedEitherWay := kb.Safes()
		for c := range kb.Mines() {
			if resolvedEitherWay.Has(c) {
				t.Fatalf("cell %s is both safe and mine", c)
			}
			resolvedEitherWay.Add(c)
		}

		for _, s := range kb.knowledge {
			if !s.valid() {
				t.Fatalf("unsound sentence %s", s)
			}
			if len(s.cells) == 0 {
				t.Fatal("empty sentence not pruned")
			}
			for c := range s.cells {
				if resolvedEitherWay.Has(c) {
					t.Fatalf("sentence %s mentions resolved cell %s", s, c)
				}
			}
		}
		for i, a := range kb.knowledge {
			for _, b := range kb.knowledge[i+1:] {
				if a.Equal(b) {
					t.Fatalf("duplicate sentence %s", a)
				}
			}
		}
	}

	for c := range kb.Mines() {
		if !mines.Has(c) {
			t.Errorf("cell %s wrongly proven to be a mine", c)
		}
	}
	for c := range kb.Safes() {
		if mines.Has(c) {
			t.Errorf("mined cell %s wrongly proven safe", c)
		}
	}
	for c := range mines {
		if !kb.KnownMine(c) {
			t.Errorf("mine %s not deduced", c)
		}
	}
}

func TestSubsetContradiction(t *testing.T) {
	t.Parallel()

	// Superset claims fewer mines than its subset: the difference count
	// goes negative and must surface instead of being inserted.
	kb := New(4, 4)
	kb.insert(NewSentence(cells(Cell{0, 0}, Cell{1, 0}), 2))
	kb.insert(NewSentence(cells(Cell{0, 0}, Cell{1, 0}, Cell{2, 0}), 1))

	_, err := kb.resolve()
	var contra *Contradiction
	if !errors.As(err, &contra) {
		t.Fatalf("resolve returned %v, want *Contradiction", err)
	}
}

func TestObserveImpossibleCount(t *testing.T) {
	t.Parallel()

	kb := New(2, 2)
	err := kb.Observe(Cell{0, 0}, 5)
	var contra *Contradiction
	if !errors.As(err, &contra) {
		t.Fatalf("Observe returned %v, want *Contradiction", err)
	}
}

func TestKnowledgeStaysBounded(t *testing.T) {
	t.Parallel()

	// Worst-case consistent input: a checkerboard of mines on 8x8, every
	// safe cell observed. Observe must return on every call and the live
	// sentence count must stay within the board's area.
	const w, h = 8, 8
	mineAt := func(c Cell) bool { return (c.X+c.Y)%2 == 1 }

	count := func(c Cell) int {
		n := 0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nb := Cell{c.X + dx, c.Y + dy}
				if 0 <= nb.X && nb.X < w && 0 <= nb.Y && nb.Y < h && mineAt(nb) {
					n++
				}
			}
		}
		return n
	}

	kb := New(w, h)
	for y := range h {
		for x := range w {
			c := Cell{x, y}
			if mineAt(c) {
				continue
			}
			if err := kb.Observe(c, count(c)); err != nil {
				t.Fatalf("Observe(%s): %v", c, err)
			}
			if kb.SentenceCount() > w*h {
				t.Fatalf("sentence count %d exceeds board area", kb.SentenceCount())
			}
		}
	}

	for y := range h {
		for x := range w {
			c := Cell{x, y}
			if mineAt(c) && !kb.KnownMine(c) {
				t.Errorf("mine %s not deduced", c)
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	kb := New(8, 8)
	if err := kb.Observe(Cell{0, 0}, 1); err != nil {
		t.Fatal(err)
	}
	if err := kb.Observe(Cell{4, 4}, 2); err != nil {
		t.Fatal(err)
	}

	restored := FromSnapshot(kb.Snapshot())

	if !restored.Safes().Equal(kb.Safes()) {
		t.Error("safes differ after round trip")
	}
	if !restored.Mines().Equal(kb.Mines()) {
		t.Error("mines differ after round trip")
	}
	if !restored.MovesMade().Equal(kb.MovesMade()) {
		t.Error("moves differ after round trip")
	}
	if restored.SentenceCount() != kb.SentenceCount() {
		t.Errorf("sentence count %d, want %d",
			restored.SentenceCount(), kb.SentenceCount())
	}
}
