package knowledge

import "fmt"

// Sentence is a constraint asserting that exactly count of its cells are
// mines. Sentences shrink as individual cells are resolved; a sentence
// whose cell set empties out carries no information and is pruned by the
// knowledge base.
type Sentence struct {
	cells CellSet
	count int
}

// NewSentence builds a sentence over a copy of cells.
func NewSentence(cells CellSet, count int) *Sentence {
	return &Sentence{cells: cells.Clone(), count: count}
}

// newSentence takes ownership of cells without copying.
func newSentence(cells CellSet, count int) *Sentence {
	return &Sentence{cells: cells, count: count}
}

func (s *Sentence) Count() int {
	return s.count
}

func (s *Sentence) Cells() CellSet {
	return s.cells.Clone()
}

func (s *Sentence) valid() bool {
	return 0 <= s.count && s.count <= len(s.cells)
}

// KnownMines returns every cell of the sentence when all of them must be
// mines (count equals cardinality), otherwise an empty set.
func (s *Sentence) KnownMines() CellSet {
	if len(s.cells) > 0 && s.count == len(s.cells) {
		return s.cells.Clone()
	}
	return CellSet{}
}

// KnownSafes returns every cell of the sentence when none of them can be a
// mine (count is zero), otherwise an empty set.
func (s *Sentence) KnownSafes() CellSet {
	if len(s.cells) > 0 && s.count == 0 {
		return s.cells.Clone()
	}
	return CellSet{}
}

// MarkMine removes c from the sentence and decrements its count, the mine
// being accounted for outside the sentence from now on. No-op when the
// sentence does not mention c.
func (s *Sentence) MarkMine(c Cell) {
	if s.cells.Has(c) {
		s.cells.Delete(c)
		s.count--
	}
}

// MarkSafe removes c from the sentence. A safe cell contributes nothing to
// the count. No-op when the sentence does not mention c.
func (s *Sentence) MarkSafe(c Cell) {
	if s.cells.Has(c) {
		s.cells.Delete(c)
	}
}

func (s *Sentence) Equal(other *Sentence) bool {
	return s.count == other.count && s.cells.Equal(other.cells)
}

func (s *Sentence) String() string {
	return fmt.Sprintf("%s = %d", s.cells, s.count)
}
