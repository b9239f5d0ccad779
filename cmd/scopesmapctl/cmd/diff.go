package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/diff"
	"github.com/spf13/cobra"

	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a.map> <b.map>",
		Short: "Print a unified diff of two maps' scopes fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := readScopesField(args[0])
			if err != nil {
				return err
			}
			b, err := readScopesField(args[1])
			if err != nil {
				return err
			}
			return diff.Text(args[0], args[1], strings.NewReader(a), strings.NewReader(b), c.OutOrStdout())
		},
	}
}

func readScopesField(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	m, err := jsonmap.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return strings.ReplaceAll(m.Scopes, ",", ",\n"), nil
}

func init() {
	rootCmd.AddCommand(newDiffCmd())
}
