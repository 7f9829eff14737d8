package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/climbr/internal/cli"
	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/export"
	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/records"
)

func gradesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "grades [V-grade]",
		Short: "Show the V to Font conversion table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			pairs := grade.Table()
			if len(args) == 1 {
				v := strings.ToUpper(strings.TrimSpace(args[0]))
				if !grade.IsV(v) {
					return common.NewUserError(fmt.Sprintf("%q is not a V grade (VB, V0 ... V12)", args[0]), records.ErrInvalidGrade)
				}
				pairs = []grade.Pair{{V: v, Font: grade.VToFont(v)}}
			}

			if f == export.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderGradeTable(pairs))
				return nil
			}
			return export.Encode(cmd.OutOrStdout(), f, pairs)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	return cmd
}
