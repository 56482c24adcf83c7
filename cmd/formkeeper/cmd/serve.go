package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/auth"
	"github.com/solatis/formkeeper/internal/core/config"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/server"
	"github.com/solatis/formkeeper/internal/questionset"
)

var noAuth bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC evaluation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "gRPC listen host")
	serveCmd.Flags().Int("port", 0, "gRPC listen port")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the question-set cache (empty disables)")
	serveCmd.Flags().BoolVar(&noAuth, "no-auth", false, "serve without API key authentication")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	database, queries, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer database.Close()

	sets, closeCache := openSetStore(ctx, queries)
	defer closeCache()

	loader, err := questionset.DefaultLoader()
	if err != nil {
		return err
	}
	opts, err := validatorOptions()
	if err != nil {
		return err
	}
	service, err := api.NewEvaluationService(sets, loader, opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	authenticator, err := newAuthenticator(queries)
	if err != nil {
		return err
	}

	grpcServer, err := server.NewGRPCServer(cfg.Server, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting formkeeper", "version", Version, "addr", grpcServer.Addr(),
		"auth", authenticator != nil, "cache", cfg.Cache.Enabled())

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		return grpcServer.Shutdown(shutdownCtx)
	}
}

// newAuthenticator returns nil with --no-auth.
func newAuthenticator(queries *db.Queries) (*auth.Authenticator, error) {
	if noAuth {
		slog.Warn("API key authentication disabled")
		return nil, nil
	}
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return nil, errors.New("no HMAC secrets configured (set " + config.SecretEnv + " or pass --no-auth)")
	}
	return auth.NewAuthenticator(secrets, queries), nil
}
