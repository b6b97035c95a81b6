// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/api"
	"github.com/minuteshq/minutes/cmd/minutes/services"
	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/logger"
)

type ServeCommander struct {
	listen    string
	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the minutes API server.

The server exposes the ingestion and query endpoints plus project,
settings, and purge maintenance operations. Configuration is read from
config.toml and MINUTES_* environment variables; changes to the config
file are detected and logged (a restart applies them).

Examples:
  minutes serve
  minutes serve --listen :9000`

const serveShortDesc string = "Run the minutes API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	if c.listen != "" {
		cfg.API.Listen = c.listen
	}

	svcs, err := services.Build(cfg, c.logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	v.OnConfigChange(func(e fsnotify.Event) {
		c.logger.Info("config file changed, restart to apply",
			zap.String("file", e.Name),
		)
	})
	v.WatchConfig()

	server := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
	}, svcs.Pipeline, svcs.Queries, svcs.Projects, svcs.Store, svcs.Vectors, svcs.Sessions, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
