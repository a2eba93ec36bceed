package main

import (
	"fmt"
	"os"

	"github.com/aretw0/syllabus/internal/cli"
	"github.com/aretw0/syllabus/internal/presentation/tui"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/render"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [draft-id]",
	Short: "Render a course in the terminal as a learner would see it",
	Long: `Renders every lesson of a draft (or of an outline file given with --from)
in preview mode and prints it as styled Markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		course, err := courseFromArgs(cmd, args)
		if err != nil {
			return err
		}

		md := tui.CourseMarkdown(render.RenderCourse(course, render.Context{Mode: render.ModePreview}, render.Status{}))
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		renderMarkdown, err := tui.NewRenderer(tui.Width(os.Stdout, 80))
		if err != nil {
			return fmt.Errorf("error creating renderer: %w", err)
		}
		out, err := renderMarkdown(md)
		if err != nil {
			return fmt.Errorf("error rendering course: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// courseFromArgs reads the course named by the draft id argument or by
// the --from outline flag.
func courseFromArgs(cmd *cobra.Command, args []string) (*domain.Course, error) {
	from, _ := cmd.Flags().GetString("from")
	switch {
	case from != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a draft id or --from, not both")
	case from != "":
		return buildOutline(from)
	case len(args) == 0:
		return nil, fmt.Errorf("a draft id or --from <outline> is required")
	}

	app, err := loadApp(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return loadCourse(cmd, app, args[0])
}

func loadCourse(cmd *cobra.Command, app *cli.App, id string) (*domain.Course, error) {
	d, err := app.Store.Load(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("error loading draft '%s': %w", id, err)
	}
	if d.Course == nil {
		return nil, fmt.Errorf("draft '%s': %w, set store.encryption_key to read it", id, domain.ErrDraftSealed)
	}
	return d.Course, nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("from", "", "Preview an outline file instead of a stored draft")
	previewCmd.Flags().Bool("raw", false, "Print the Markdown without terminal styling")
}
