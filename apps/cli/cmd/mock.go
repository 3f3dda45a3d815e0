package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag       int
	mockDelayFlag      string
	mockVerboseFlag    bool
	mockSeedFlag       string
	mockAPIVersionFlag string
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start a fake GIRAF API server",
	Long: `Start an HTTP server that implements the account and week template
endpoints over an in-memory store.

The server is seeded with departments, the Graatand, Tobias and Kurt accounts
and two week templates. A seed file in YAML replaces the built-in seed.

Examples:
  giraftest mock
  giraftest mock --port 5050
  giraftest mock --delay 100ms --verbose
  giraftest mock --seed ./seed.yaml`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 5000, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Enable verbose logging")
	mockCmd.Flags().StringVar(&mockSeedFlag, "seed", "", "YAML seed file (default: built-in seed)")
	mockCmd.Flags().StringVar(&mockAPIVersionFlag, "api-version", "v1", "API version path prefix")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}

	opts := []mock.Option{
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithVerbose(mockVerboseFlag),
		mock.WithAPIVersion(mockAPIVersionFlag),
	}
	if mockSeedFlag != "" {
		seed, err := mock.LoadSeed(mockSeedFlag)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("failed to load seed: %w", err))
		}
		opts = append(opts, mock.WithSeed(seed))
	}

	server := mock.NewServer(opts...)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down mock server...")
	}()

	return server.Start(ctx)
}
