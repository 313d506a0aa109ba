package handlers

import (
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type CreateAgentSessionDTO struct {
	Width     int     `schema:"width,required"`
	Height    int     `schema:"height,required"`
	MineCount int     `schema:"mine_count,required"`
	Seed      *uint64 `schema:"seed"`
}

func ParseCreateAgentSessionDTO(src map[string][]string) (CreateAgentSessionDTO, error) {
	var dto CreateAgentSessionDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	err := dec.Decode(&dto, src)
	return dto, err
}

// SentenceDTO is the wire form of one live sentence: exactly Count of the
// listed cells are mines.
type SentenceDTO struct {
	Cells []knowledge.Cell `json:"cells"`
	Count int              `json:"count"`
}

// AgentSessionDTO is the wire form of a session: outcome columns plus the
// agent's current deductions, live sentences included so clients can trace
// what the agent still has to work out. The ground-truth mine grid never
// leaves the server.
type AgentSessionDTO struct {
	AgentSessionId string           `json:"agent_session_id"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	MineCount      int              `json:"mine_count"`
	Dead           bool             `json:"dead"`
	Won            bool             `json:"won"`
	Steps          int              `json:"steps"`
	Guesses        int              `json:"guesses"`
	MovesMade      []knowledge.Cell `json:"moves_made"`
	SafeMoves      []knowledge.Cell `json:"safe_moves"`
	KnownMines     []knowledge.Cell `json:"known_mines"`
	Sentences      []SentenceDTO    `json:"sentences"`
	StartedAt      int64            `json:"started_at"`
	EndedAt        *int64           `json:"ended_at,omitempty"`
}

func NewAgentSessionDTO(session *repository.AgentSession, ag *agent.Agent) *AgentSessionDTO {
	kb := ag.Knowledge()

	sentences := make([]SentenceDTO, 0, kb.SentenceCount())
	for _, s := range kb.Sentences() {
		sentences = append(sentences, SentenceDTO{
			Cells: s.Cells().Slice(),
			Count: s.Count(),
		})
	}

	var endedAt *int64
	if session.EndedAt.Valid {
		e := session.EndedAt.Time.UnixMilli()
		endedAt = &e
	}

	return &AgentSessionDTO{
		AgentSessionId: strconv.FormatInt(session.AgentSessionId, 10),
		Width:          session.Width,
		Height:         session.Height,
		MineCount:      session.MineCount,
		Dead:           ag.Dead(),
		Won:            ag.Won(),
		Steps:          ag.Steps(),
		Guesses:        ag.Guesses(),
		MovesMade:      kb.MovesMade().Slice(),
		SafeMoves:      kb.SafeMoves().Slice(),
		KnownMines:     kb.Mines().Slice(),
		Sentences:      sentences,
		StartedAt:      session.StartedAt.Time.UnixMilli(),
		EndedAt:        endedAt,
	}
}

// StepDTO pairs one step record with the refreshed session view.
type StepDTO struct {
	Step    *agent.Step      `json:"step,omitempty"`
	Session *AgentSessionDTO `json:"session"`
}
