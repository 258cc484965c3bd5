package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:       "schema <config|manifest>",
		Short:     "Print the JSON Schema of the config file or the export manifest",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"config", "manifest"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := arrayfile.Schema(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(b, '\n'))
			return err
		},
	})
}
