package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ryanwaits/openpkg"
	"github.com/ryanwaits/openpkg/server"
)

type ServeCmd struct {
	Addr     string        `help:"Address to listen on." default:":8080"`
	Config   string        `help:"Path to the config file." default:"openpkg.yaml"`
	CacheTTL time.Duration `help:"How long analysis results are cached." default:"5m" name:"cache-ttl"`
}

func (c *ServeCmd) Run() error {
	cfg, err := openpkg.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	analyzer := openpkg.New(cfg, openpkg.WithLogger(logger))
	srv := server.New(analyzer, server.Config{
		CacheTTL:          c.CacheTTL,
		CoverageThreshold: cfg.CoverageThreshold,
	}, server.WithLogger(logger))

	logger.Info("listening", "addr", c.Addr)
	return http.ListenAndServe(c.Addr, srv.Handler())
}
