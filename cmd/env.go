package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/boxtasks"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/config"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/fetch"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/logging"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
)

// env bundles what every command needs.
type env struct {
	cfg    config.Config
	logger *log.Logger
	loc    *time.Location
}

// exitRuntime reports a runtime failure and exits with status 2.
func exitRuntime(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

// exitUsage reports invalid input and exits with status 1.
func exitUsage(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func loadEnv() (*env, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, os.Getenv)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(os.Stderr, level, logFormat)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, loc: loc}, nil
}

func (e *env) credentials() jsonapi.Credentials {
	creds := jsonapi.Credentials{
		Token:        e.cfg.API.Token,
		ClientID:     e.cfg.API.ClientID,
		ClientSecret: e.cfg.API.ClientSecret,
		TokenURL:     e.cfg.API.TokenURL,
	}
	if path, err := jsonapi.DefaultTokenFile(); err == nil {
		creds.TokenFile = path
	}
	return creds
}

// client returns a JSON:API client for the configured backend. Without
// credentials requests are sent unauthenticated.
func (e *env) client(ctx context.Context) (*jsonapi.Client, error) {
	ts, err := jsonapi.TokenSource(ctx, e.credentials())
	if errors.Is(err, jsonapi.ErrNoCredentials) {
		e.logger.Warn("no api credentials configured, sending unauthenticated requests")
		return jsonapi.New(e.cfg.API.BaseURL, nil), nil
	}
	if err != nil {
		return nil, err
	}
	return jsonapi.NewAuthenticated(ctx, e.cfg.API.BaseURL, ts), nil
}

func (e *env) fetcher(ctx context.Context) (*fetch.Fetcher, error) {
	client, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	store := boxtasks.NewStore(client)
	return fetch.New(store, fetch.Options{
		ChunkSize:   boxtasks.ChunkSize,
		Concurrency: e.cfg.Defaults.Concurrency,
	}, e.logger), nil
}

func (e *env) generator(ctx context.Context) (*report.Generator, error) {
	f, err := e.fetcher(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewGenerator(f, time.Now, e.logger), nil
}
