package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/pvcnt/memkvd/internal/server"
	"github.com/pvcnt/memkvd/internal/store"
)

var (
	configPath string
	socket     string
	logLevel   string
	removeOnly bool
)

var rootCmd = &cobra.Command{
	Use:          "memkvd",
	Short:        "memkvd serves an in-memory key/value store on a unix socket",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVarP(&socket, "socket", "S", "", "Path to the unix socket (default: ~/"+server.SocketName+")")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&removeOnly, "remove", "r", false, "Remove the unix socket if it exists and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	// Load configuration; flags win over file and environment
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if socket != "" {
		cfg.Socket = socket
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// If we're just removing an old socket, do that and we're done
	if removeOnly {
		removed, err := server.RemoveSocket(cfg.Socket)
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Socket)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist\n", cfg.Socket)
		}
		return nil
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "memkvd",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: os.Stderr,
	})

	inmemSignal, err := server.SetupMetrics()
	if err != nil {
		return err
	}
	defer inmemSignal.Stop()

	kv, err := store.New(store.Options{Engine: cfg.Engine, MaxKeys: cfg.MaxKeys})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	s := server.NewServer(cfg, store.NewInstrumentedStore(kv), logger)
	lis, err := s.Listen()
	if err != nil {
		return err
	}

	// Catch signals so we can remove the socket before exiting
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(lis)
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Ready")

	var sig os.Signal
	select {
	case sig = <-sigCh:
		logger.Info("caught signal", "signal", sig.String())
	case err := <-errCh:
		_ = s.Shutdown()
		return fmt.Errorf("failed to serve: %w", err)
	}

	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return signalError(sig)
}

// signalError reports the signal that stopped the server
func signalError(sig os.Signal) error {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return fmt.Errorf("caught %s", name)
		}
	}
	return fmt.Errorf("caught signal %s", sig)
}
