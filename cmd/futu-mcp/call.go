package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0x6d61/futu-mcp/internal/tools"
	"github.com/0x6d61/futu-mcp/internal/tui"
)

func newCallCmd(a *app) *cobra.Command {
	var (
		args   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print the result",
		Example: `  futu-mcp call get_market_snapshot --args '{"code_list":["HK.00700"]}'
  echo '{"market":"HK"}' | futu-mcp call request_trading_days --args -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			raw, err := readArgs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			env, err := a.dispatcher.InvokeJSON(cmd.Context(), pos[0], raw)
			if errors.Is(err, tools.ErrUnknownTool) {
				return &exitError{code: 2, err: err}
			}
			if err != nil {
				return err
			}
			if err := writeEnvelope(cmd.OutOrStdout(), env, asJSON); err != nil {
				return err
			}
			if env.IsError {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&args, "args", "{}", "arguments as a JSON object (\"-\" reads stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}

func readArgs(s string, stdin io.Reader) (json.RawMessage, error) {
	if strings.TrimSpace(s) != "-" {
		return json.RawMessage(s), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read arguments from stdin: %w", err)
	}
	return data, nil
}

func writeEnvelope(w io.Writer, env *tools.Envelope, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	}
	_, err := fmt.Fprint(w, tui.RenderEnvelope(env, renderWidth, true))
	return err
}
