package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/syllabus/internal/presentation/tui"
	"github.com/aretw0/syllabus/pkg/publish"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <draft-id>",
	Short: "Publish a draft to the course repository",
	Long: `Submits the draft to the course repository service. On success the draft is
removed and the edit path of the new course is printed; on failure the draft
is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Sessions.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading draft '%s': %w", args[0], err)
		}

		ref, err := s.Publish(cmd.Context())
		if err != nil {
			if errors.Is(err, publish.ErrPublishInFlight) {
				return fmt.Errorf("draft '%s' is already being published", args[0])
			}
			app.Logger.Debug("Publish failed", "draft_id", args[0], "error", err)
			return errors.New(publish.UserMessage(err))
		}

		tui.Status(cmd.OutOrStdout(), true, "Published course %s", ref.ID)
		fmt.Fprintln(cmd.OutOrStdout(), publish.EditPath(ref.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
