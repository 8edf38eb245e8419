package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pvcnt/memkvd/internal/cli"
	"github.com/pvcnt/memkvd/internal/server"
)

var (
	socket string
)

var rootCmd = &cobra.Command{
	Use:          "memkv",
	Short:        "memkv gets, sets, deletes, or lists key/value pairs stored in memkvd",
	Long:         "memkv is a command-line interface for managing key/value pairs held by a memkvd server on a local unix socket.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if socket != "" {
			return nil
		}
		if v := os.Getenv("MEMKVD_SOCKET"); v != "" {
			socket = v
			return nil
		}
		var err error
		socket, err = server.DefaultSocket()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&socket, "socket", "S", "", "Path to memkvd's socket (default: ~/"+server.SocketName+")")

	rootCmd.AddCommand(cli.NewGetCmd(&socket))
	rootCmd.AddCommand(cli.NewSetCmd(&socket))
	rootCmd.AddCommand(cli.NewDeleteCmd(&socket))
	rootCmd.AddCommand(cli.NewListCmd(&socket))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
