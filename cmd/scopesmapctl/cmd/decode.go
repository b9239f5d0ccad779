package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcemap-scopes/scopesmap"
	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
)

var decodeLax bool

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file.map>",
		Short: "Decode a source map's scopes field and print its diagnostics",
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

			mode := scopesmap.Strict
			if decodeLax {
				mode = scopesmap.Lax
			}
			handler := scopesmap.NewHandler()
			info, err := scopesmap.Decode(m, scopesmap.DecodeOptions{Mode: mode, Diagnostics: handler})
			if err != nil {
				return err
			}

			c.Printf("decoded %d top-level scope(s), %d top-level range(s)\n", len(info.Scopes), len(info.Ranges))
			for _, w := range handler.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
			}
			for _, n := range handler.Infos() {
				fmt.Fprintf(os.Stderr, "info: %s\n", n.Error())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&decodeLax, "lax", false, "recover from malformed input instead of failing")
	return cmd
}

func init() {
	rootCmd.AddCommand(newDecodeCmd())
}
