package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"countdown_tui/internal"
	"countdown_tui/internal/config"
	"countdown_tui/internal/logger"
	"countdown_tui/internal/project"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "countdown_tui.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, logFile, err := logger.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	log.Info().Str("config", configPath).Str("database", cfg.DatabasePath).
		Dur("tick_interval", cfg.TickInterval).Msg("starting")

	repo, err := project.NewRepository(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m, err := internal.NewModel(repo, cfg.DefaultDuration, log)
	if err != nil {
		repo.Close()
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)

	// The ticker only wakes the loop; the delta sent is the measured time
	// since the previous send.
	go func() {
		last := time.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				p.Send(internal.MsgTick{Delta: now.Sub(last)})
				last = now
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info().Msg("exiting")
	return nil
}
