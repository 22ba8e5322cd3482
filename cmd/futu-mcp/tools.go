package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0x6d61/futu-mcp/internal/tui"
)

// renderWidth は非対話出力の折り返し幅。
const renderWidth = 100

type toolView struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func newToolsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs := a.registry.List()
			out := cmd.OutOrStdout()
			if asJSON {
				views := make([]toolView, 0, len(specs))
				for _, s := range specs {
					views = append(views, toolView{Name: s.Name, Description: s.Description, InputSchema: s.InputSchema()})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			md := tui.CatalogMarkdown(specs)
			rendered, err := tui.RenderMarkdownStyle(md, renderWidth, tui.MarkdownStyle(out))
			if err != nil {
				// フォールバック: Markdown のまま
				rendered = md
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print name, description and input schema as JSON")
	return cmd
}
