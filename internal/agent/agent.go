package agent

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var (
	// ErrNoSafeMove means no cell is currently provably safe. Expected
	// whenever the knowledge base has run out of deductions; the caller
	// falls back to a random move.
	ErrNoSafeMove = errors.New("no safe move known")

	// ErrNoMoves means every cell is either played or a known mine.
	ErrNoMoves = errors.New("no moves possible")

	// ErrGameOver rejects stepping a finished game.
	ErrGameOver = errors.New("game is over")
)

// Agent plays one game by feeding oracle reports into a knowledge base and
// only guessing when no cell is provably safe.
type Agent struct {
	params board.GameParams
	kb     *knowledge.KnowledgeBase
	rnd    *rand.Rand

	dead, won      bool
	steps, guesses int
}

func New(params board.GameParams, r *rand.Rand) *Agent {
	return &Agent{
		params: params,
		kb:     knowledge.New(params.Width, params.Height),
		rnd:    r,
	}
}

func (a *Agent) Knowledge() *knowledge.KnowledgeBase { return a.kb }
func (a *Agent) Params() board.GameParams            { return a.params }
func (a *Agent) Dead() bool                          { return a.dead }
func (a *Agent) Won() bool                           { return a.won }
func (a *Agent) Steps() int                          { return a.steps }
func (a *Agent) Guesses() int                        { return a.guesses }

// MakeSafeMove picks a random cell among those proven safe and not yet
// played. Returns ErrNoSafeMove when there are none.
func (a *Agent) MakeSafeMove() (knowledge.Cell, error) {
	moves := a.kb.SafeMoves().Slice()
	if len(moves) == 0 {
		return knowledge.Cell{}, ErrNoSafeMove
	}
	return moves[a.rnd.IntN(len(moves))], nil
}

// MakeRandomMove picks uniformly among the cells that are neither played
// nor known mines. Returns ErrNoMoves when the whole board is accounted
// for.
func (a *Agent) MakeRandomMove() (knowledge.Cell, error) {
	candidates := make([]knowledge.Cell, 0, a.params.Width*a.params.Height)
	for y := range a.params.Height {
		for x := range a.params.Width {
			c := knowledge.Cell{X: x, Y: y}
			if !a.kb.Played(c) && !a.kb.KnownMine(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return knowledge.Cell{}, ErrNoMoves
	}
	return candidates[a.rnd.IntN(len(candidates))], nil
}

// Step records one move and the state of the deductions right after it.
type Step struct {
	Cell       knowledge.Cell `json:"cell"`
	Guess      bool           `json:"guess"`
	Exploded   bool           `json:"exploded"`
	KnownSafes int            `json:"known_safes"`
	KnownMines int            `json:"known_mines"`
	Sentences  int            `json:"sentences"`
}

// Step makes one move against f: a safe cell when one is known, otherwise
// a guess. The oracle's count for the opened cell is fed into the
// knowledge base and every newly proven mine is flagged on the field.
func (a *Agent) Step(f *board.Field) (*Step, error) {
	if a.dead || a.won {
		return nil, ErrGameOver
	}
	if f.GameParams != a.params {
		return nil, fmt.Errorf("field is %s, agent expects %s", f.Seed(), a.params.Seed())
	}

	cell, err := a.MakeSafeMove()
	guess := false
	if errors.Is(err, ErrNoSafeMove) {
		cell, err = a.MakeRandomMove()
		guess = true
	}
	if err != nil {
		return nil, err
	}

	a.steps++
	if guess {
		a.guesses++
	}

	if f.IsMine(cell) {
		a.dead = true
		return &Step{
			Cell:       cell,
			Guess:      guess,
			Exploded:   true,
			KnownSafes: len(a.kb.Safes()),
			KnownMines: len(a.kb.Mines()),
			Sentences:  a.kb.SentenceCount(),
		}, nil
	}

	count, err := f.NeighborMineCount(cell)
	if err != nil {
		return nil, err
	}
	if err := a.kb.Observe(cell, count); err != nil {
		return nil, fmt.Errorf("observing %s: %w", cell, err)
	}

	for c := range a.kb.Mines() {
		if err := f.Flag(c); err != nil {
			return nil, err
		}
	}

	/*
	 * The game is won once every mine-free cell has been opened (all
	 * moves are mine-free, or we would be dead) or every mine carries a
	 * correct flag.
	 */
	if len(a.kb.MovesMade()) == a.params.Width*a.params.Height-a.params.MineCount ||
		f.Won() {
		a.won = true
	}

	return &Step{
		Cell:       cell,
		Guess:      guess,
		KnownSafes: len(a.kb.Safes()),
		KnownMines: len(a.kb.Mines()),
		Sentences:  a.kb.SentenceCount(),
	}, nil
}

type Outcome struct {
	Won     bool `json:"won"`
	Dead    bool `json:"dead"`
	Steps   int  `json:"steps"`
	Guesses int  `json:"guesses"`
}

func (a *Agent) Outcome() *Outcome {
	return &Outcome{Won: a.won, Dead: a.dead, Steps: a.steps, Guesses: a.guesses}
}

// Play steps the agent until the game is decided or nothing is left to
// play. maxSteps <= 0 means no limit; the loop terminates regardless since
// every step consumes a cell.
func (a *Agent) Play(f *board.Field, maxSteps int) (*Outcome, error) {
	for !a.dead && !a.won {
		if maxSteps > 0 && a.steps >= maxSteps {
			break
		}
		if _, err := a.Step(f); errors.Is(err, ErrNoMoves) {
			break
		} else if err != nil {
			return nil, err
		}
	}
	return a.Outcome(), nil
}
