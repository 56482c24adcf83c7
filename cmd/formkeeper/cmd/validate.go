package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a submission: clear hidden answers, check visible ones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, answers, err := loadEngineAndAnswers()
		if err != nil {
			return err
		}
		opts, err := validatorOptions()
		if err != nil {
			return err
		}

		report := validate.New(engine, opts...).ValidateSubmission(cmd.Context(), answers)
		if err := writeJSON(cmd.OutOrStdout(), api.NewValidateResponse(engine.Set(), report)); err != nil {
			return err
		}
		if !report.Valid() {
			return fmt.Errorf("submission has %d validation errors", len(report.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addInputFlags(validateCmd)
}
