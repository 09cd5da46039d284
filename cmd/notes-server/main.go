// Command notes-server serves the notes query service over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/nhle/notekeeper/internal/logging"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/rpc"
	"github.com/nhle/notekeeper/internal/service"
	"github.com/nhle/notekeeper/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "notes-server:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("notes-server", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("addr", "", "listen address, e.g. :8080")
	flags.String("driver", "", "database driver: sqlite or postgres")
	flags.String("dsn", "", "database file path or connection URL")
	issueFor := flags.String("issue-token", "", "print a signed token for this OpenID subject and exit")
	tokenName := flags.String("token-name", "", "display name embedded in an issued token")
	tokenTTL := flags.Duration("token-ttl", 30*24*time.Hour, "lifetime of an issued token")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(*configPath, map[string]*pflag.Flag{
		"server.addr":     changed(flags, "addr"),
		"database.driver": changed(flags, "driver"),
		"database.dsn":    changed(flags, "dsn"),
	})
	if err != nil {
		return err
	}

	if *issueFor != "" {
		token, err := rpc.IssueToken(cfg.Server.JWTSecret, cfg.Server.JWTIssuer, *issueFor, *tokenName, "", *tokenTTL)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("store opened")

	srv, err := rpc.NewServer(service.New(st, log), st, rpc.Config{
		JWTSecret: cfg.Server.JWTSecret,
		JWTIssuer: cfg.Server.JWTIssuer,
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.Server.Addr, time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
}

// changed returns the named flag only if it was set on the command line.
func changed(flags *pflag.FlagSet, name string) *pflag.Flag {
	if !flags.Changed(name) {
		return nil
	}
	return flags.Lookup(name)
}

func newLogger(cfg model.LogConfig) (zerolog.Logger, func(), error) {
	if cfg.File == "" {
		log, err := logging.New(cfg, os.Stderr)
		return log, func() {}, err
	}
	f, err := logging.OpenFile(cfg.File)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	log, err := logging.New(cfg, f)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return log, func() { f.Close() }, nil
}
