package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"

	"voltcart/internal/config"
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/repos"
)

// runtime is what every subcommand needs: resolved config, a logger and an
// open, migrated database.
type runtime struct {
	cfg     config.Config
	log     *log.Logger
	db      *sqlx.DB
	logFile *os.File
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
		}
		rt.logFile = f
		out = io.MultiWriter(os.Stdout, f)
	}

	mode := log.Production
	if cfg.IsDevelopment() {
		mode = log.Development
	}
	sink, err := externalSink(cfg)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.log = log.New(log.Options{Mode: mode, Out: out, Sink: sink})
	rt.log.Info(nil, "configuration loaded", cfg.Summary())

	rt.db, err = api.Measure(rt.log, "open_database", map[string]any{"driver": cfg.DBDriver}, func() (*sqlx.DB, error) {
		return repos.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	})
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return rt, nil
}

// externalSink prefers the error tracker over the plain webhook.
func externalSink(cfg config.Config) (log.Sink, error) {
	switch {
	case cfg.SentryDSN != "":
		return log.NewSentrySink(cfg.SentryDSN, cfg.Env, cfg.Version)
	case cfg.WebhookURL != "":
		return log.WebhookSink{URL: cfg.WebhookURL}, nil
	}
	return nil, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
	if rt.log != nil {
		rt.log.Close()
	}
	if rt.logFile != nil {
		_ = rt.logFile.Close()
	}
}
