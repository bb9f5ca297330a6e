package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/anchor/internal/config"
	"github.com/vango-dev/anchor/internal/errors"
	"github.com/vango-dev/anchor/internal/live"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live playground",
		Long: `Start the live playground server.

Browsers connect over WebSocket and receive every write to the color,
background and label containers. Each connection is anchored by its
own context, so disconnecting releases its subscriptions.

Configuration is read from --config, or from the nearest anchor.json
above the working directory, or defaults.

Examples:
  anchor serve
  anchor serve --addr=0.0.0.0:8080
  anchor serve --config=./anchor.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to anchor.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from anchor.json)")

	return cmd
}

func runServe(configPath, addr string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}

	if addr != "" {
		if err := applyAddr(cfg, addr); err != nil {
			return err
		}
	}

	w := os.Stdout
	printBanner(w)
	info(w, "Playground: %s", cfg.URL())
	info(w, "WebSocket:  ws://%s/ws", cfg.Address())
	if cfg.MetricsEnabled() {
		info(w, "Metrics:    %s%s", cfg.URL(), cfg.Server.MetricsPath)
	}
	info(w, "Orphans:    %s", cfg.Engine.OrphanPolicy)

	server := live.NewServer(live.Options{
		Config: cfg,
		Logger: cfg.Logger(os.Stderr),
	})

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(w, "\n\n  Shutting down...")
		cancel()
	}()

	return server.Start(ctx)
}

// applyAddr overrides the configured host and port with a host:port flag.
func applyAddr(cfg *config.Config, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("A302").
			WithSubject("--addr=%s", addr).
			WithSuggestion("Use host:port, for example localhost:7070 or :7070").
			Wrap(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return errors.New("A302").
			WithSubject("--addr=%s", addr).
			WithSuggestion("Use a numeric port").
			Wrap(err)
	}

	if host != "" {
		cfg.Server.Host = host
	}
	cfg.Server.Port = port
	return cfg.Validate()
}
