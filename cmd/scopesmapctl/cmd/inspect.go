package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sourcemap-scopes/scopesmap"
	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.map>",
		Short: "Print a table of every generated range and its definition scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := jsonmap.Unmarshal(data)
			if err != nil {
				return err
			}
			info, err := scopesmap.Decode(m, scopesmap.DecodeOptions{})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(c.OutOrStdout())
			table.SetHeader([]string{"Start", "End", "Scope", "StackFrame", "Hidden"})
			table.SetBorder(false)
			table.SetCenterSeparator("")

			for _, r := range info.Ranges {
				appendRangeRows(table, r)
			}
			table.Render()
			return nil
		},
	}
}

func appendRangeRows(table *tablewriter.Table, r *scopesmap.GeneratedRange) {
	if r == nil {
		return
	}
	scopeName := "-"
	if r.OriginalScope != nil {
		if r.OriginalScope.HasName {
			scopeName = r.OriginalScope.Name
		} else {
			scopeName = fmt.Sprintf("#%d", r.OriginalScope.ID)
		}
	}
	table.Append([]string{
		fmt.Sprintf("%d:%d", r.Start.Line, r.Start.Column),
		fmt.Sprintf("%d:%d", r.End.Line, r.End.Column),
		scopeName,
		fmt.Sprintf("%t", r.IsStackFrame),
		fmt.Sprintf("%t", r.IsHidden),
	})
	for _, c := range r.Children {
		appendRangeRows(table, c)
	}
}

func init() {
	rootCmd.AddCommand(newInspectCmd())
}
