package knowledge

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds rejects observations outside the board before any state
// is touched.
var ErrOutOfBounds = errors.New("cell out of bounds")

// Contradiction reports that the knowledge base and the oracle disagree:
// either a cell was proven both safe and mined, or a sentence ended up
// with an impossible mine count. Exactly one of Cell and Sentence is set.
// No recovery is possible; the current game is lost to the inconsistency.
type Contradiction struct {
	Cell     *Cell
	Sentence *Sentence
}

func (e *Contradiction) Error() string {
	if e.Cell != nil {
		return fmt.Sprintf("contradiction: cell %s proven both safe and mine", e.Cell)
	}
	return fmt.Sprintf("contradiction: impossible sentence %s", e.Sentence)
}

func cellContradiction(c Cell) *Contradiction {
	return &Contradiction{Cell: &c}
}

func sentenceContradiction(s *Sentence) *Contradiction {
	return &Contradiction{Sentence: s}
}
