package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pvcnt/memkvd/internal/transport"
)

func NewDeleteCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:     "del <key>",
		Aliases: []string{"delete"},
		Short:   "Delete a key/value pair",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &transport.Request{Op: transport.OpDelete, Key: []byte(args[0])}
			if err := send(cmd, *socket, req); err != nil {
				return fmt.Errorf("failed to delete key %q: %w", args[0], err)
			}
			return nil
		},
	}
}
