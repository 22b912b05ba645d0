package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/openapi"
)

// routesCmd represents the routes command
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the dispatch table",
	Long: `Inspects the application and prints its public actions.

Output formats:
- table (default): a rendered Markdown table.
- mermaid: a Mermaid diagram (graph TD) of namespaces and actions.
- openapi: an OpenAPI 3 document describing the public paths.`,
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		format, _ := cmd.Flags().GetString("format")

		app, _, err := demo.New(logging.NewNop(), configFile)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}
		rows := app.Dispatcher().Table()

		switch format {
		case "table":
			fmt.Print(tui.RenderRoutes(rows))
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(rows))
		case "openapi":
			doc := openapi.Export(app.Name(), arbor.Version, rows)
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding document: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		default:
			fmt.Printf("Unknown format: %s. Supported: table, mermaid, openapi\n", format)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringP("format", "f", "table", "Output format: 'table', 'mermaid' or 'openapi'")
}
