package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"matchctl/internal/devfeed"
	"matchctl/internal/logging"
)

const demoFeedShutdownTimeout = 5 * time.Second

func newDemoFeedCmd(g *globalOptions) *cobra.Command {
	var listen, snapshotPath string
	cmd := &cobra.Command{
		Use:   "demo-feed",
		Short: "serve a local match feed for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(listen) == "" {
				listen = cfg.ListenAddr
			}
			logPath := cfg.LogFile
			if logPath == "" {
				logPath = logging.Stderr
			}
			logger, err := logging.New(cfg.LogLevel, logPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", listen, err)
			}
			return serveDemoFeed(ctx, ln, snapshotPath, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "YAML or JSON snapshot to serve (default: built-in sample)")
	return cmd
}

func serveDemoFeed(ctx context.Context, ln net.Listener, snapshotPath string, logger *zap.Logger, out io.Writer) error {
	snap, err := devfeed.LoadSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	hub := devfeed.NewHub(ctx, snap, logger)
	srv := &http.Server{
		Handler:           devfeed.Routes(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	fmt.Fprintf(out, "demo feed listening on ws://%s/ws\n", ln.Addr())
	logger.Info("demo feed started",
		zap.String("addr", ln.Addr().String()),
		zap.Int("servers", len(snap.Servers)),
		zap.Int("groups", len(snap.Groups)),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve demo feed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), demoFeedShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown demo feed: %w", err)
	}
	logger.Info("demo feed stopped")
	return nil
}
