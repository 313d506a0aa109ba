package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type AgentHandler struct {
	logger *slog.Logger
	repo   *repository.Queries
	ws     *config.WebSocket
	rnd    *rand.Rand
}

func NewAgentHandler(
	logger *slog.Logger,
	db *pgxpool.Pool,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *AgentHandler {
	return &AgentHandler{
		logger: logger,
		repo:   repository.New(db),
		ws:     ws,
		rnd:    rnd,
	}
}

func (h AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateAgentSessionDTO(r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	params := board.GameParams{
		Width:     dto.Width,
		Height:    dto.Height,
		MineCount: dto.MineCount,
	}
	if err := params.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	rnd := h.rnd
	if dto.Seed != nil {
		rnd = rand.New(rand.NewPCG(*dto.Seed, *dto.Seed))
	}

	field, err := board.NewField(params, rnd)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to generate a field", "error", err)
		return
	}
	ag := agent.New(params, rnd)

	state, err := agent.NewSession(field, ag).Bytes()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to encode session state", "error", err)
		return
	}

	createParams := repository.CreateAgentSessionParams{
		Width:     params.Width,
		Height:    params.Height,
		MineCount: params.MineCount,
		State:     state,
	}
	if claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims); ok {
		createParams.PlayerId = &claims.PlayerId
	}

	session, err := h.repo.CreateAgentSession(r.Context(), createParams)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to create agent session", "error", err)
		return
	}

	sendJSONOrLog(w, h.logger, NewAgentSessionDTO(session, ag))
}

// load fetches a session row and rebuilds the live field and agent.
func (h AgentHandler) load(
	ctx context.Context, id int64,
) (*repository.AgentSession, *board.Field, *agent.Agent, error) {
	session, err := h.repo.FetchAgentSession(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	saved, err := agent.DecodeSession(session.State)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid agent_session.state: %w", err)
	}
	return session, saved.Field, saved.Restore(h.rnd), nil
}

// persist writes the session blob and outcome columns back, stamping
// ended_at the first time the game becomes decided.
func (h AgentHandler) persist(
	ctx context.Context,
	session *repository.AgentSession,
	field *board.Field,
	ag *agent.Agent,
) (*repository.AgentSession, error) {
	state, err := agent.NewSession(field, ag).Bytes()
	if err != nil {
		return nil, err
	}

	dead, won := ag.Dead(), ag.Won()
	steps, guesses := ag.Steps(), ag.Guesses()
	params := repository.UpdateAgentSessionParams{
		Dead:    &dead,
		Won:     &won,
		Steps:   &steps,
		Guesses: &guesses,
		State:   &state,
	}
	if (dead || won) && !session.EndedAt.Valid {
		endedAt := time.Now().UTC()
		params.EndedAt = &endedAt
	}

	return h.repo.UpdateAgentSession(ctx, session.AgentSessionId, params)
}

func (h AgentHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	session, _, ag, err := h.load(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch session", "error", err)
		return
	}

	sendJSONOrLog(w, h.logger, NewAgentSessionDTO(session, ag))
}

func (h AgentHandler) Step(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	session, field, ag, err := h.load(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch session", "error", err)
		return
	}

	step, err := ag.Step(field)
	if errors.Is(err, agent.ErrGameOver) || errors.Is(err, agent.ErrNoMoves) {
		w.WriteHeader(http.StatusConflict)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("agent step failed", "error", err)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	session, err = h.persist(r.Context(), session, field, ag)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to update session", "error", err)
		return
	}

	sendJSONOrLog(w, h.logger, StepDTO{
		Step:    step,
		Session: NewAgentSessionDTO(session, ag),
	})
}

func (h AgentHandler) Solve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	session, field, ag, err := h.load(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch session", "error", err)
		return
	}

	if _, err := ag.Play(field, 0); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("agent play failed", "error", err)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	session, err = h.persist(r.Context(), session, field, ag)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to update session", "error", err)
		return
	}

	sendJSONOrLog(w, h.logger, NewAgentSessionDTO(session, ag))
}
