package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/questionset"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for question-set documents",
	// Needs no configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := questionset.SchemaJSON()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
