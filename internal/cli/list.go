package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pvcnt/memkvd/internal/transport"
)

func NewListCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := send(cmd, *socket, &transport.Request{Op: transport.OpList}); err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}
			return nil
		},
	}
}
