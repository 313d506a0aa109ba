package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper-agent/internal/agent"
)

type wsCommand string

const (
	wsGet   wsCommand = "g"
	wsStep  wsCommand = "s"
	wsAuto  wsCommand = "a"
	wsClose wsCommand = "q"
)

// Watch drives a session over a websocket. Each step the agent takes is
// streamed back as one StepDTO frame, so a client can replay the whole
// deduction run move by move.
func (h AgentHandler) Watch(w http.ResponseWriter, r *http.Request) {
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

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	step := func() (bool, error) {
		s, err := ag.Step(field)
		if errors.Is(err, agent.ErrGameOver) || errors.Is(err, agent.ErrNoMoves) {
			return false, conn.WriteJSON(wrapError(err))
		}
		if err != nil {
			h.logger.Error("agent step failed", "error", err)
			return false, conn.WriteJSON(wrapError(err))
		}
		if session, err = h.persist(r.Context(), session, field, ag); err != nil {
			h.logger.Error("unable to update session", "error", err)
			return false, err
		}
		return true, conn.WriteJSON(StepDTO{
			Step:    s,
			Session: NewAgentSessionDTO(session, ag),
		})
	}

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		switch wsCommand(strings.TrimSpace(string(buf))) {
		case wsGet:
			if err := conn.WriteJSON(NewAgentSessionDTO(session, ag)); err != nil {
				return
			}
		case wsStep:
			if _, err := step(); err != nil {
				return
			}
		case wsAuto:
			for !ag.Dead() && !ag.Won() {
				ok, err := step()
				if err != nil {
					return
				}
				if !ok {
					break
				}
			}
		case wsClose:
			return
		default:
			if err := conn.WriteJSON(wrapError(errors.New("unknown command"))); err != nil {
				return
			}
		}
	}
}
