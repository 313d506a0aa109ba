package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	auth := handlers.NewAuth(a.logger, a.db, a.cookies, a.jwt)
	agent := handlers.NewAgentHandler(a.logger, a.db, a.ws, createRand())
	highscores := handlers.NewHighscores(a.logger, a.db)

	a.router.HandleFunc("POST /register", auth.Register)
	a.router.HandleFunc("POST /login", auth.Login)
	a.router.HandleFunc("POST /logout", auth.Logout)
	a.router.HandleFunc("GET /status", auth.Status)

	a.router.HandleFunc("POST /agent", agent.Create)
	a.router.HandleFunc("GET /agent/{id}", agent.Fetch)
	a.router.HandleFunc("POST /agent/{id}/step", agent.Step)
	a.router.HandleFunc("POST /agent/{id}/solve", agent.Solve)
	a.router.HandleFunc("GET /agent/{id}/watch", agent.Watch)

	a.router.HandleFunc("GET /highscores", highscores.Get)
}
