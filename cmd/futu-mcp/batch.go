package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/0x6d61/futu-mcp/internal/config"
	"github.com/0x6d61/futu-mcp/internal/tools"
	"github.com/0x6d61/futu-mcp/internal/tui"
)

// batchItem は batch ファイルの 1 要素。JSON も YAML として読める。
type batchItem struct {
	Tool string         `yaml:"tool"`
	Args map[string]any `yaml:"args"`
}

// batchResult は 1 要素分の結果。入力と同じ順で出力する。
type batchResult struct {
	Tool         string `json:"tool"`
	IsError      bool   `json:"isError"`
	Kind         string `json:"kind,omitempty"`
	Text         string `json:"text"`
	InvocationID string `json:"invocationId,omitempty"`

	env *tools.Envelope
}

func newBatchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Invoke a list of tools concurrently",
		Long: `Reads a YAML or JSON list of {tool, args} and invokes each entry,
at most --concurrency at a time. Results are printed in input order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			items, err := loadBatch(pos[0])
			if err != nil {
				return err
			}
			results := a.runBatch(cmd, items)

			if err := writeBatch(cmd.OutOrStdout(), results, asJSON); err != nil {
				return err
			}
			for _, r := range results {
				if r.IsError {
					return &exitError{code: 1}
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("concurrency", config.DefaultBatchConcurrency, "maximum concurrent invocations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as a JSON array")
	return cmd
}

func loadBatch(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	var items []batchItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("batch: failed to parse %s: %w", path, err)
	}
	for i, it := range items {
		if it.Tool == "" {
			return nil, fmt.Errorf("batch: entry %d has no tool", i)
		}
	}
	return items, nil
}

// runBatch は errgroup で並列実行する。個々の失敗は結果に載せ、全体は止めない。
func (a *app) runBatch(cmd *cobra.Command, items []batchItem) []batchResult {
	results := make([]batchResult, len(items))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.BatchConcurrency)

	for i, it := range items {
		g.Go(func() error {
			args := it.Args
			if args == nil {
				args = map[string]any{}
			}
			env, err := a.dispatcher.Invoke(ctx, it.Tool, args)
			if err != nil {
				env := tools.TextEnvelope(err.Error(), true)
				results[i] = batchResult{Tool: it.Tool, IsError: true, Text: err.Error(), env: env}
				return nil
			}
			results[i] = batchResult{
				Tool:         it.Tool,
				IsError:      env.IsError,
				Kind:         string(env.Kind),
				Text:         env.Text(),
				InvocationID: env.InvocationID,
				env:          env,
			}
			return nil
		})
	}
	_ = g.Wait()
	a.log.Debug("batch finished", zap.Int("items", len(items)), zap.Int("concurrency", a.cfg.BatchConcurrency))
	return results
}

func writeBatch(w io.Writer, results []batchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	}
	header := lipgloss.NewStyle().Bold(true)
	for i, r := range results {
		fmt.Fprintln(w, header.Render(fmt.Sprintf("[%d] %s", i+1, r.Tool)))
		if _, err := fmt.Fprint(w, tui.RenderEnvelope(r.env, renderWidth, true)); err != nil {
			return err
		}
	}
	return nil
}
