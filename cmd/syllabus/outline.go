package main

import (
	"fmt"

	"github.com/aretw0/syllabus/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline [draft-id]",
	Short: "Export the course outline as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of a course: its modules in order and
their lessons shaped by type. Lessons whose content no longer matches their
type are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		course, err := courseFromArgs(cmd, args)
		if err != nil {
			return err
		}

		overlay := graph.MismatchOverlay(course)
		overlay.Current, _ = cmd.Flags().GetString("current")
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(course, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().String("from", "", "Read an outline file instead of a stored draft")
	outlineCmd.Flags().String("current", "", "Module or lesson id to highlight")
}
