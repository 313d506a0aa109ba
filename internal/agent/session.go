package agent

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

// Snapshot is the serializable form of an agent.
type Snapshot struct {
	Params    board.GameParams
	Knowledge *knowledge.Snapshot
	Dead, Won bool
	Steps     int
	Guesses   int
}

func (a *Agent) Snapshot() *Snapshot {
	return &Snapshot{
		Params:    a.params,
		Knowledge: a.kb.Snapshot(),
		Dead:      a.dead,
		Won:       a.won,
		Steps:     a.steps,
		Guesses:   a.guesses,
	}
}

func FromSnapshot(snap *Snapshot, r *rand.Rand) *Agent {
	return &Agent{
		params:  snap.Params,
		kb:      knowledge.FromSnapshot(snap.Knowledge),
		rnd:     r,
		dead:    snap.Dead,
		won:     snap.Won,
		steps:   snap.Steps,
		guesses: snap.Guesses,
	}
}

// Session pairs a field with the agent playing it, round-tripped through
// storage as a single gob blob.
type Session struct {
	Field *board.Field
	Agent *Snapshot
}

func NewSession(f *board.Field, a *Agent) *Session {
	return &Session{Field: f, Agent: a.Snapshot()}
}

func DecodeSession(buf []byte) (*Session, error) {
	var s Session
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Session) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore rebuilds the live agent from the stored snapshot.
func (s *Session) Restore(r *rand.Rand) *Agent {
	return FromSnapshot(s.Agent, r)
}
