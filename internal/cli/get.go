package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pvcnt/memkvd/internal/client"
	"github.com/pvcnt/memkvd/internal/transport"
)

// requestTimeout bounds a single request from the command line
const requestTimeout = 5 * time.Second

func NewGetCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a key's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &transport.Request{Op: transport.OpGet, Key: []byte(args[0])}
			if err := send(cmd, *socket, req); err != nil {
				return fmt.Errorf("failed to get key %q: %w", args[0], err)
			}
			return nil
		},
	}
}

// send runs req against the server and copies the response to stdout
func send(cmd *cobra.Command, socket string, req *transport.Request) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	return client.New(socket).Do(ctx, req, cmd.OutOrStdout())
}
