// Command console is an interactive demo client for the narrative
// engine: it simulates a minimal season calendar, advances the engine
// day by day, and lets you resolve drama events and press conferences
// from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jwebster45206/narrative-engine/internal/config"
	"github.com/jwebster45206/narrative-engine/internal/logger"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
)

const saveSlot = "console"

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tuning: %v\n", err)
		os.Exit(1)
	}

	var store storage.Storage
	switch cfg.SaveBackend {
	case "sqlite":
		store, err = storage.NewSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqlite storage: %v\n", err)
			os.Exit(1)
		}
	default:
		store = storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dramaCatalog, err := store.DramaCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drama catalog: %v\n", err)
		os.Exit(1)
	}
	interviewCatalog, err := store.InterviewCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "interview catalog: %v\n", err)
		os.Exit(1)
	}

	seed, err := dice.NewSeed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	roller := dice.NewRoller(seed)

	eng := engine.New(tuning.EngineConfig(), dramaCatalog, interviewCatalog, roller, log)

	// Resume a previous console session if one is saved.
	if st, err := store.LoadState(ctx, saveSlot); err == nil {
		eng.Restore(st)
		log.Info("restored save slot", "slot", saveSlot)
	}

	ui := newConsoleUI(eng, roller)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(*ConsoleUI); ok && m.dirty {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		if err := store.SaveState(saveCtx, saveSlot, eng.Serialize()); err != nil {
			log.Error("failed to save session", "error", err)
		} else {
			log.Info("session saved", "slot", saveSlot)
		}
	}
}
