package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/climbr/internal/cli"
	"github.com/Veraticus/climbr/internal/export"
	"github.com/Veraticus/climbr/internal/storage"
)

func setsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Browse wall sets saved with --save",
	}

	cmd.AddCommand(setsListCmd())
	cmd.AddCommand(setsShowCmd())
	cmd.AddCommand(setsDeleteCmd())

	return cmd
}

func setsListCmd() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved wall sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			store, err := openSetsStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sets, err := store.ListWallSets(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if f == export.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderWallSets(sets))
				return nil
			}
			return export.Encode(cmd.OutOrStdout(), f, sets)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "Maximum number of sets to list")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	return cmd
}

func setsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved wall set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			store, err := openSetsStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, doc, err := store.GetWallSet(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("wall set %s: %w", args[0], err)
			}

			if f == export.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Wall set %s (%s)", summary.ID, summary.Provider)))
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRoutes(doc.WallSet))
				return nil
			}
			return export.Encode(cmd.OutOrStdout(), f, doc)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format (table, json, yaml)")
	return cmd
}

func setsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved wall set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSetsStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteWallSet(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("wall set %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Deleted wall set "+args[0]))
			return nil
		},
	}
}

func openSetsStorage(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return openStorage(cmd.Context(), settings)
}
