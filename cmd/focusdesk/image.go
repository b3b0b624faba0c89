package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"focusdesk/internal/background"
	"focusdesk/internal/storage"
)

func newImageCmd(opts *rootOptions) *cobra.Command {
	image := &cobra.Command{
		Use:     "image",
		Aliases: []string{"bg"},
		Short:   "Manage uploaded background images",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List backgrounds (presets and uploads)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			all, err := app.Backgrounds.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			current, err := app.Backgrounds.Selected(cmd.Context())
			if err != nil {
				return err
			}
			for _, bg := range all {
				mark := " "
				if bg.ID == current.ID {
					mark = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", mark, bg.ID, bg.Kind, bg.Name)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	add := &cobra.Command{
		Use:   "add <path>",
		Short: "Upload an image and keep it as a background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			bg, err := app.Backgrounds.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s as %s\n", bg.Name, bg.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an uploaded image",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			id := args[0]
			if !strings.HasPrefix(id, "upload:") {
				id = background.UploadID(id)
			}
			if err := app.Backgrounds.Remove(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Select a background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			bg, err := app.Backgrounds.Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "background: %s\n", bg.Name)
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Write an uploaded image back to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			rec, err := app.Store.Get(cmd.Context(), strings.TrimPrefix(args[0], "upload:"))
			if err != nil {
				return err
			}
			_, payload, err := storage.DecodeDataURI(rec.Data)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[1], len(payload))
			return nil
		},
	}

	image.AddCommand(list, add, rm, use, export)
	return image
}
