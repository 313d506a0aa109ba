package knowledge

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

func init() {
	Log.SetLevel(logrus.WarnLevel)
}

// KnowledgeBase accumulates everything provable about one game: the cells
// already played, the cells proven safe, the cells proven to be mines, and
// the live sentences that are not yet fully resolved.
//
// After every Observe call the following invariants hold:
//
//   - safes and mines are disjoint
//   - no live sentence mentions a cell already proven safe or mined
//   - no live sentence has an empty cell set
//   - no two live sentences are equal
type KnowledgeBase struct {
	width, height int

	movesMade CellSet
	safes     CellSet
	mines     CellSet
	knowledge []*Sentence
}

func New(width, height int) *KnowledgeBase {
	return &KnowledgeBase{
		width:     width,
		height:    height,
		movesMade: CellSet{},
		safes:     CellSet{},
		mines:     CellSet{},
	}
}

func (kb *KnowledgeBase) Width() int  { return kb.width }
func (kb *KnowledgeBase) Height() int { return kb.height }

func (kb *KnowledgeBase) inBounds(c Cell) bool {
	return 0 <= c.X && c.X < kb.width && 0 <= c.Y && c.Y < kb.height
}

// neighbors returns the in-bounds cells within one row and column of c,
// excluding c itself.
func (kb *KnowledgeBase) neighbors(c Cell) CellSet {
	out := make(CellSet, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Cell{X: c.X + dx, Y: c.Y + dy}
			if kb.inBounds(n) {
				out.Add(n)
			}
		}
	}
	return out
}

// MarkSafe records that c holds no mine and broadcasts the fact into every
// live sentence. Marking an already-safe cell again has no further effect.
func (kb *KnowledgeBase) MarkSafe(c Cell) error {
	if kb.mines.Has(c) {
		return cellContradiction(c)
	}
	if kb.safes.Has(c) {
		return nil
	}
	kb.safes.Add(c)
	for _, s := range kb.knowledge {
		s.MarkSafe(c)
	}
	Log.WithField("cell", c).Debug("marked safe")
	return nil
}

// MarkMine records that c is a mine and broadcasts the fact into every
// live sentence. Marking an already-known mine again has no further effect.
func (kb *KnowledgeBase) MarkMine(c Cell) error {
	if kb.safes.Has(c) {
		return cellContradiction(c)
	}
	if kb.mines.Has(c) {
		return nil
	}
	kb.mines.Add(c)
	for _, s := range kb.knowledge {
		s.MarkMine(c)
	}
	Log.WithField("cell", c).Debug("marked mine")
	return nil
}

// Observe ingests one oracle report: cell c was revealed and has count
// mines among its up-to-8 neighbors. It records the move, marks c safe,
// adds the neighbor sentence and then alternates trivial propagation with
// subset-difference resolution until neither yields anything new.
//
// A returned *Contradiction means the oracle and the knowledge base
// disagree; the knowledge base stops mutating as soon as the inconsistency
// is detected and must not be trusted afterwards.
func (kb *KnowledgeBase) Observe(c Cell, count int) error {
	if !kb.inBounds(c) {
		return fmt.Errorf("observe %s on %dx%d board: %w",
			c, kb.width, kb.height, ErrOutOfBounds)
	}

	kb.movesMade.Add(c)
	if err := kb.MarkSafe(c); err != nil {
		return err
	}

	/*
	 * Build the new sentence over the unresolved neighbors only. Known
	 * mines among the neighbors are accounted for by decrementing the
	 * count; known safes contribute nothing.
	 */
	cells := make(CellSet, 8)
	for n := range kb.neighbors(c) {
		if kb.mines.Has(n) {
			count--
		} else if !kb.safes.Has(n) {
			cells.Add(n)
		}
	}

	s := newSentence(cells, count)
	if !s.valid() {
		return sentenceContradiction(s)
	}
	Log.WithFields(logrus.Fields{
		"cell": c, "sentence": s.String(),
	}).Debug("observed")
	kb.insert(s)

	/*
	 * Main deductive loop: run each rule to quiescence, and keep going
	 * for as long as either of them manages to do something.
	 */
	for {
		propagated, err := kb.propagate()
		if err != nil {
			return err
		}
		resolved, err := kb.resolve()
		if err != nil {
			return err
		}
		if !propagated && !resolved {
			return nil
		}
	}
}

// insert adds s to the live collection unless an equal sentence is already
// there or s carries no information.
func (kb *KnowledgeBase) insert(s *Sentence) bool {
	if len(s.cells) == 0 {
		return false
	}
	for _, other := range kb.knowledge {
		if other.Equal(s) {
			return false
		}
	}
	kb.knowledge = append(kb.knowledge, s)
	return true
}

// hasCellSet reports whether any live sentence constrains exactly cells.
func (kb *KnowledgeBase) hasCellSet(cells CellSet) bool {
	for _, s := range kb.knowledge {
		if s.cells.Equal(cells) {
			return true
		}
	}
	return false
}

// propagate applies trivial resolution until a full pass produces no new
// mark: any sentence whose count is zero proves all its cells safe, any
// sentence whose count equals its cardinality proves them all mines. Each
// mark cascades into every sentence, so passes repeat until quiet.
func (kb *KnowledgeBase) propagate() (bool, error) {
	any := false
	for {
		var safes, mines []Cell
		for _, s := range kb.knowledge {
			if !s.valid() {
				return any, sentenceContradiction(s)
			}
			safes = append(safes, s.KnownSafes().Slice()...)
			mines = append(mines, s.KnownMines().Slice()...)
		}
		if len(safes) == 0 && len(mines) == 0 {
			kb.compact()
			return any, nil
		}
		for _, c := range safes {
			if err := kb.MarkSafe(c); err != nil {
				return any, err
			}
		}
		for _, c := range mines {
			if err := kb.MarkMine(c); err != nil {
				return any, err
			}
		}
		any = true
	}
}

// compact prunes fully-resolved sentences and collapses duplicates that
// appeared while cells were being removed.
func (kb *KnowledgeBase) compact() {
	kept := kb.knowledge[:0]
	for _, s := range kb.knowledge {
		if len(s.cells) == 0 {
			continue
		}
		dup := false
		for _, other := range kept {
			if other.Equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(kb.knowledge); i++ {
		kb.knowledge[i] = nil
	}
	kb.knowledge = kept
}

// resolve scans for one application of subset-difference resolution:
// whenever one sentence's cells are contained in another's, the cells only
// the larger one mentions hold exactly the difference of the two counts.
// The first derived sentence is propagated immediately (it is often
// trivially resolvable on the spot, and propagation reshuffles the
// collection) and resolve reports back to the outer loop, which rescans.
func (kb *KnowledgeBase) resolve() (bool, error) {
	for i := 0; i < len(kb.knowledge); i++ {
		for j := 0; j < len(kb.knowledge); j++ {
			if i == j {
				continue
			}
			a, b := kb.knowledge[i], kb.knowledge[j]
			if len(a.cells) == 0 || !a.cells.SubsetOf(b.cells) {
				continue
			}

			diff := b.cells.Difference(a.cells)
			if len(diff) == 0 {
				/*
				 * Same cell set twice. Equal counts are a duplicate for
				 * compact to fold; differing counts cannot both be true.
				 */
				if a.count != b.count {
					return false, sentenceContradiction(b)
				}
				continue
			}

			count := b.count - a.count
			if count < 0 || count > len(diff) {
				return false, sentenceContradiction(newSentence(diff, count))
			}
			if kb.hasCellSet(diff) {
				continue
			}

			s := newSentence(diff, count)
			kb.knowledge = append(kb.knowledge, s)
			Log.WithFields(logrus.Fields{
				"larger": b.String(), "subset": a.String(), "derived": s.String(),
			}).Debug("derived sentence")

			if _, err := kb.propagate(); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

// SafeMoves returns the cells proven safe that have not been played yet.
// The returned set is freshly allocated; callers may mutate it freely.
func (kb *KnowledgeBase) SafeMoves() CellSet {
	out := make(CellSet)
	for c := range kb.safes {
		if !kb.movesMade.Has(c) {
			out.Add(c)
		}
	}
	return out
}

// Mines returns a copy of the set of cells proven to be mines.
func (kb *KnowledgeBase) Mines() CellSet {
	return kb.mines.Clone()
}

// Safes returns a copy of the set of cells proven safe.
func (kb *KnowledgeBase) Safes() CellSet {
	return kb.safes.Clone()
}

// MovesMade returns a copy of the set of cells already observed.
func (kb *KnowledgeBase) MovesMade() CellSet {
	return kb.movesMade.Clone()
}

func (kb *KnowledgeBase) KnownSafe(c Cell) bool { return kb.safes.Has(c) }
func (kb *KnowledgeBase) KnownMine(c Cell) bool { return kb.mines.Has(c) }
func (kb *KnowledgeBase) Played(c Cell) bool    { return kb.movesMade.Has(c) }

// SentenceCount reports the number of live sentences.
func (kb *KnowledgeBase) SentenceCount() int {
	return len(kb.knowledge)
}

// Sentences returns copies of the live sentences.
func (kb *KnowledgeBase) Sentences() []*Sentence {
	out := make([]*Sentence, len(kb.knowledge))
	for i, s := range kb.knowledge {
		out[i] = newSentence(s.cells.Clone(), s.count)
	}
	return out
}
