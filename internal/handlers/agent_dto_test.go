package handlers

import (
	"math/rand/v2"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

func TestParseCreateAgentSessionDTO(t *testing.T) {
	t.Parallel()

	t.Run("full query", func(t *testing.T) {
		t.Parallel()
		query := url.Values{
			"width":      {"9"},
			"height":     {"9"},
			"mine_count": {"10"},
			"seed":       {"12345"},
			"extra":      {"ignored"},
		}
		dto, err := ParseCreateAgentSessionDTO(query)
		assert.NoError(t, err)
		assert.Equal(t, 9, dto.Width)
		assert.Equal(t, 9, dto.Height)
		assert.Equal(t, 10, dto.MineCount)
		if assert.NotNil(t, dto.Seed) {
			assert.Equal(t, uint64(12345), *dto.Seed)
		}
	})

	t.Run("seed is optional", func(t *testing.T) {
		t.Parallel()
		query := url.Values{
			"width":      {"30"},
			"height":     {"16"},
			"mine_count": {"99"},
		}
		dto, err := ParseCreateAgentSessionDTO(query)
		assert.NoError(t, err)
		assert.Nil(t, dto.Seed)
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		query := url.Values{
			"width":  {"9"},
			"height": {"9"},
		}
		_, err := ParseCreateAgentSessionDTO(query)
		assert.Error(t, err)
	})
}

func TestNewAgentSessionDTOCarriesSentences(t *testing.T) {
	t.Parallel()

	// Mine in the corner of a 2x2 board; opening the opposite corner
	// leaves one live three-cell sentence.
	params := board.GameParams{Width: 2, Height: 2, MineCount: 1}
	f := &board.Field{
		GameParams: params,
		Grid:       []bool{false, false, false, true},
		Flagged:    knowledge.CellSet{},
	}

	ag := agent.New(params, rand.New(rand.NewPCG(1, 2)))
	if err := ag.Knowledge().MarkSafe(knowledge.Cell{X: 0, Y: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := ag.Step(f); err != nil {
		t.Fatal(err)
	}

	session := &repository.AgentSession{
		AgentSessionId: 42,
		Width:          params.Width,
		Height:         params.Height,
		MineCount:      params.MineCount,
		StartedAt:      pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}

	dto := NewAgentSessionDTO(session, ag)

	assert.Equal(t, "42", dto.AgentSessionId)
	if assert.Len(t, dto.Sentences, 1) {
		s := dto.Sentences[0]
		assert.Equal(t, 1, s.Count)
		assert.ElementsMatch(t, []knowledge.Cell{
			{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
		}, s.Cells)
	}
	assert.Nil(t, dto.EndedAt)
}
