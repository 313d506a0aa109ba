package knowledge

// Snapshot is the serializable form of a knowledge base, used to round-trip
// agent sessions through storage as gob blobs.
type Snapshot struct {
	Width, Height int
	MovesMade     []Cell
	Safes         []Cell
	Mines         []Cell
	Sentences     []SentenceData
}

type SentenceData struct {
	Cells []Cell
	Count int
}

func (kb *KnowledgeBase) Snapshot() *Snapshot {
	snap := &Snapshot{
		Width:     kb.width,
		Height:    kb.height,
		MovesMade: kb.movesMade.Slice(),
		Safes:     kb.safes.Slice(),
		Mines:     kb.mines.Slice(),
	}
	for _, s := range kb.knowledge {
		snap.Sentences = append(snap.Sentences, SentenceData{
			Cells: s.cells.Slice(),
			Count: s.count,
		})
	}
	return snap
}

func FromSnapshot(snap *Snapshot) *KnowledgeBase {
	kb := New(snap.Width, snap.Height)
	kb.movesMade = NewCellSet(snap.MovesMade...)
	kb.safes = NewCellSet(snap.Safes...)
	kb.mines = NewCellSet(snap.Mines...)
	for _, d := range snap.Sentences {
		kb.knowledge = append(kb.knowledge, newSentence(NewCellSet(d.Cells...), d.Count))
	}
	return kb
}
