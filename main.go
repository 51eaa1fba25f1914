package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/sadopc/timekeeper/internal/config"
	"github.com/sadopc/timekeeper/internal/credential"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/sync"
	"github.com/sadopc/timekeeper/internal/tui"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "config file path")
	dbPath := flag.String("db", "", "sqlite db path (overrides config)")
	writeConfig := flag.Bool("write-config", false, "write the effective config to --config and exit")
	flag.Usage = usage
	// Flags after a subcommand belong to it.
	flag.CommandLine.SetInterspersed(false)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			fatal(err)
		}
		fmt.Println("wrote", *configPath)
		return
	}

	kr := credential.NewKeyring()
	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "auth":
			if err := runAuth(kr, args[1:]); err != nil {
				fatal(err)
			}
			return
		default:
			usage()
			os.Exit(2)
		}
	}

	if err := run(cfg, kr); err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  timekeeper [flags]            start the tracker
  timekeeper auth <token>       store a Google OAuth access token
  timekeeper auth --clear       remove the stored token

Flags:
`)
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func runAuth(kr *credential.Keyring, args []string) error {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	clearToken := fs.Bool("clear", false, "remove the stored token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clearToken {
		if err := kr.Delete(credential.GoogleTokenKey); err != nil && !errors.Is(err, credential.ErrNotFound) {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		return errors.New("usage: timekeeper auth <token>")
	}
	if err := kr.Set(credential.GoogleTokenKey, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Println("Token saved.")
	return nil
}

func run(cfg *config.AppConfig, kr *credential.Keyring) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.File, "timekeeper")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	entries, err := s.ListEntries(store.EntryFilter{})
	if err != nil {
		return fmt.Errorf("loading entries: %w", err)
	}

	client := sync.NewClient(cfg.Sync, credential.Token(kr, credential.GoogleTokenKey))
	dispatcher := sync.NewDispatcher(client, s, cfg.Sync)
	// In-flight calendar pushes finish before the database closes.
	defer dispatcher.Wait()

	app := tui.NewApp(tui.Options{
		Store:     s,
		TickEvery: cfg.Timer.TickInterval(),
		Sync:      dispatcher,
		Entries:   entries,
	})
	defer app.Close()

	log.Printf("starting with %d entries from %s", len(entries), cfg.Database.Path)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
