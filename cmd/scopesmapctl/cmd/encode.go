package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcemap-scopes/scopesmap"
	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
)

var encodeLax bool

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <file.map>",
		Short: "Decode then re-encode a map's scopes field, dropping anything LAX mode recovers from",
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
			if encodeLax {
				mode = scopesmap.Lax
			}
			info, err := scopesmap.Decode(m, scopesmap.DecodeOptions{Mode: mode})
			if err != nil {
				return err
			}
			if err := scopesmap.Encode(info, m); err != nil {
				return err
			}

			out, err := jsonmap.Marshal(m)
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&encodeLax, "lax", false, "recover from malformed input instead of failing")
	return cmd
}

func init() {
	rootCmd.AddCommand(newEncodeCmd())
}
