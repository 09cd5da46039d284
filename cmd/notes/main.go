// Command notes is the terminal client for a notes server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nhle/notekeeper/internal/app"
	"github.com/nhle/notekeeper/internal/client"
	"github.com/nhle/notekeeper/internal/credential"
	"github.com/nhle/notekeeper/internal/logging"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/rpc"
	"github.com/nhle/notekeeper/internal/snapshot"
	notesync "github.com/nhle/notekeeper/internal/sync"
	configview "github.com/nhle/notekeeper/internal/ui/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "notes:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("notes", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("server", "", "notes server URL")
	tokenFlag := flags.String("token", "", "bearer token; stored in the keyring for later runs")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var serverFlag *pflag.Flag
	if flags.Changed("server") {
		serverFlag = flags.Lookup("server")
	}
	cfg, err := model.LoadConfig(*configPath, map[string]*pflag.Flag{
		"client.server_url": serverFlag,
	})
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(*configPath), "notes.log")
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log, err := logging.New(cfg.Log, logFile)
	if err != nil {
		return err
	}

	ring, err := credential.Open(filepath.Dir(*configPath))
	if err != nil {
		return err
	}
	tokenKey := credential.TokenKey(cfg.Client.ServerURL)
	token := *tokenFlag
	if token != "" {
		if err := ring.Set(tokenKey, token); err != nil {
			log.Warn().Err(err).Msg("saving token to keyring")
		}
	} else {
		token, err = ring.Get(tokenKey)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("no token for %s; run notes-server --issue-token and pass it with --token", cfg.Client.ServerURL)
	}

	snap, err := snapshot.Open(cfg.Client.SnapshotPath)
	if err != nil {
		return err
	}
	defer snap.Close()

	timeout := time.Duration(cfg.Client.TimeoutSec) * time.Second
	backend := rpc.NewClient(cfg.Client.ServerURL, token, timeout)
	store := client.NewStore(backend,
		client.WithSnapshot(snap),
		client.WithLogger(log.With().Str("component", "store").Logger()),
	)
	poller := notesync.New(store, time.Duration(cfg.Client.PollIntervalSec)*time.Second)
	defer poller.Stop()

	if cfg.Display.Theme == "light" {
		lipgloss.SetHasDarkBackground(false)
	}

	m := app.New(store, poller, app.Options{
		Tags:    backend,
		Folders: backend,
		Auth:    backend,
		Config:  *cfg,
		Settings: &configview.Options{
			Path:   *configPath,
			Token:  token,
			Verify: verifyToken(timeout),
			Tokens: ring,
		},
		ExportDir: cfg.Client.ExportDir,
		Log:       log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	store.Subscribe(func(client.State) {
		// Dispatch may run inside Update, which must not block on Send.
		go p.Send(app.StateChangedMsg{})
	})

	log.Info().Str("server", cfg.Client.ServerURL).Msg("starting")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// verifyToken asks the server who the token belongs to.
func verifyToken(timeout time.Duration) configview.Verifier {
	return func(ctx context.Context, serverURL, token string) (string, error) {
		u, err := rpc.NewClient(serverURL, token, timeout).Me(ctx)
		if err != nil {
			return "", err
		}
		return u.Name, nil
	}
}
