package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/wtmobile/internal/config"
	"github.com/roach88/wtmobile/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// Ready, if set, receives the bound address once the listener is open
	// (for testing with port 0).
	Ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gym form as a local web page",
		Long: `Serve the add/edit form and gym list over HTTP on a local address.

The page works like the shell: submit adds or saves, Edit loads a gym into the
form, Delete asks for confirmation. Stop with Ctrl-C.

Example:
  wtmobile serve
  wtmobile serve --addr 127.0.0.1:9000 --db ~/gyms.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", config.DefaultAddr, "listen address")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	s, err := openSession(ctx, opts.RootOptions, cmd, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := opts.Config.Addr
	if addr == "" {
		addr = opts.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler:           web.New(s.ctrl, s.logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
		case <-ctx.Done():
		}
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	bound := ln.Addr().String()
	s.logger.Info("serving", "addr", bound, "db", opts.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", bound)
	if opts.Ready != nil {
		opts.Ready <- bound
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
