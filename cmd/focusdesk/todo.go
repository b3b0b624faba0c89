package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"focusdesk/internal/bootstrap"
	"focusdesk/internal/todo"
)

// openStore 与 loadApp 相同，但存储不可用时直接失败
// openStore is loadApp for one-shot commands: an unavailable store is an error
func openStore(ctx context.Context, opts *rootOptions) (*bootstrap.BuildResult, error) {
	app, err := loadApp(ctx, opts)
	if err != nil {
		return nil, err
	}
	if app.StartupErr != nil {
		_ = app.Close()
		return nil, app.StartupErr
	}
	return app, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTodoID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid to-do id %q", s)
	}
	return id, nil
}

func newTodoCmd(opts *rootOptions) *cobra.Command {
	todoCmd := &cobra.Command{Use: "todo", Short: "Manage the to-do list"}

	var (
		filter string
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List to-dos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			items := app.Todos.Items(parseFilter(filter))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no to-dos")
				return nil
			}
			for _, it := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", it.Marker(), it.ID, it.Text)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d remaining\n", app.Todos.Remaining())
			return nil
		},
	}
	list.Flags().StringVar(&filter, "filter", "all", "all|active|completed")
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a to-do",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			item, err := app.Todos.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d: %s\n", item.ID, item.Text)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a to-do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			item, err := app.Todos.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d: %s\n", item.Marker(), item.ID, item.Text)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a to-do",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Todos.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed to-dos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			n, err := app.Todos.ClearCompleted(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared %d\n", n)
			return nil
		},
	}

	todoCmd.AddCommand(list, add, toggle, rm, clearCmd)
	return todoCmd
}

func parseFilter(s string) todo.Filter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return todo.FilterActive
	case "completed", "done":
		return todo.FilterCompleted
	default:
		return todo.FilterAll
	}
}
