package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pvcnt/memkvd/internal/transport"
)

func NewSetCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a key's value",
		Long: "Set a key's value. When the value is omitted it is read from the terminal " +
			"without echo, or from the first line of standard input.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				var err error
				if value, err = readValue(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			req := &transport.Request{Op: transport.OpSet, Key: []byte(key), Value: []byte(value)}
			if err := send(cmd, *socket, req); err != nil {
				return fmt.Errorf("failed to set key %q: %w", key, err)
			}
			return nil
		},
	}
}

// readValue prompts for a value on a terminal without echoing it, or reads
// the first line of in otherwise
func readValue(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Value (will not echo):")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read value: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", fmt.Errorf("value must not be empty")
	}
	return line, nil
}
