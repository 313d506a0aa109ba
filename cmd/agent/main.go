package main

import (
	"flag"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/board"
)

var log = logrus.New()

var (
	width   = flag.Int("width", 9, "board width")
	height  = flag.Int("height", 9, "board height")
	mines   = flag.Int("mines", 10, "mine count")
	games   = flag.Int("games", 1, "number of games to play")
	seed    = flag.Uint64("seed", 0, "rng seed (0 picks a random one)")
	logFile = flag.String("log-file", "", "also write logs to this file (rotated)")
	verbose = flag.Bool("v", false, "debug logging")
)

func setupLogging() error {
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *logFile == "" {
		return nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   *logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      log.GetLevel(),
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to create log file hook: %w", err)
	}
	log.AddHook(hook)
	return nil
}

func createRand() *rand.Rand {
	if *seed != 0 {
		return rand.New(rand.NewPCG(*seed, *seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		log.Fatal(err)
	}

	params := board.GameParams{
		Width:     *width,
		Height:    *height,
		MineCount: *mines,
	}
	if err := params.Validate(); err != nil {
		log.Fatal(err)
	}

	rnd := createRand()

	var (
		won          int
		totalSteps   int
		totalGuesses int
	)

	for i := range *games {
		field, err := board.NewField(params, rnd)
		if err != nil {
			log.Fatal("unable to generate field: ", err)
		}

		a := agent.New(params, rnd)
		outcome, err := a.Play(field, 0)
		if err != nil {
			log.Fatal("game aborted: ", err)
		}

		log.WithFields(logrus.Fields{
			"game":    i + 1,
			"won":     outcome.Won,
			"dead":    outcome.Dead,
			"steps":   outcome.Steps,
			"guesses": outcome.Guesses,
		}).Info("game over")
		log.Debug("final board\n", field)

		if outcome.Won {
			won++
		}
		totalSteps += outcome.Steps
		totalGuesses += outcome.Guesses
	}

	n := *games
	fmt.Fprintf(os.Stdout,
		"%s: played %d, won %d (%.1f%%), avg steps %.1f, avg guesses %.1f\n",
		params.Seed(), n, won,
		100*float64(won)/float64(n),
		float64(totalSteps)/float64(n),
		float64(totalGuesses)/float64(n),
	)
}
