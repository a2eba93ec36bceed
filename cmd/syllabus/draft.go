package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/syllabus/internal/presentation/tui"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/outline"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage stored course drafts",
	Long:  `List, inspect, import and remove the drafts kept by the configured draft store.`,
}

var draftLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing drafts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No drafts found.")
			return nil
		}

		fmt.Fprintln(out, "Drafts:")
		for _, id := range ids {
			d, err := app.Store.Load(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(out, "- %s (unreadable: %v)\n", id, err)
				continue
			}
			if d.Course == nil {
				fmt.Fprintf(out, "- %s (encrypted)\n", id)
				continue
			}
			title := d.Course.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(out, "- %s  %q  %d modules  %s\n", id, title, d.Course.ModuleCount(), d.UpdatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var draftInspectCmd = &cobra.Command{
	Use:   "inspect <draft-id>",
	Short: "Print a draft as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		d, err := app.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading draft '%s': %w", args[0], err)
		}

		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling draft: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var draftRmCmd = &cobra.Command{
	Use:   "rm <draft-id>...",
	Short: "Remove one or more drafts",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			if args, err = app.Store.List(cmd.Context()); err != nil {
				return fmt.Errorf("error listing drafts: %w", err)
			}
		}

		var errs []error
		for _, id := range args {
			if err := app.Sessions.Delete(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed draft '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

var draftImportCmd = &cobra.Command{
	Use:   "import <outline-file>",
	Short: "Create a draft from a YAML or JSON outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		course, err := buildOutline(args[0])
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = ulid.Make().String()
		}
		overwrite, _ := cmd.Flags().GetBool("force")
		if !overwrite {
			if _, err := app.Store.Load(cmd.Context(), id); err == nil {
				return fmt.Errorf("draft '%s' already exists (use --force to replace it)", id)
			} else if !errors.Is(err, domain.ErrDraftNotFound) {
				return err
			}
		}

		err = app.Sessions.WithLock(cmd.Context(), id, func(ctx context.Context) error {
			return app.Store.Save(ctx, id, &domain.Draft{ID: id, Course: course, UpdatedAt: time.Now().UTC()})
		})
		if err != nil {
			return fmt.Errorf("error saving draft: %w", err)
		}
		tui.Status(cmd.OutOrStdout(), true, "Imported %q as draft %s (%d modules)", course.Title, id, course.ModuleCount())
		return nil
	},
}

// buildOutline loads an outline file into a course with fresh ids.
func buildOutline(path string) (*domain.Course, error) {
	o, err := outline.Load(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return outline.Build(o, tree.NewULIDGenerator(), filepath.Dir(abs))
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftLsCmd)
	draftCmd.AddCommand(draftInspectCmd)
	draftCmd.AddCommand(draftRmCmd)
	draftCmd.AddCommand(draftImportCmd)

	draftRmCmd.Flags().Bool("all", false, "Remove every stored draft")
	draftImportCmd.Flags().String("id", "", "Draft id (default: a new ULID)")
	draftImportCmd.Flags().BoolP("force", "f", false, "Replace an existing draft with the same id")
}
