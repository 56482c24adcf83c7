package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/rules"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Validate, compile and store question-set documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, queries, err := openDatabase(ctx, true)
		if err != nil {
			return err
		}
		defer database.Close()

		sets, closeCache := openSetStore(ctx, queries)
		defer closeCache()

		for _, path := range args {
			set, err := loadSetFile(path)
			if err != nil {
				return err
			}
			if _, err := rules.Compile(set); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rec, changed, err := sets.Put(ctx, set)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			state := "unchanged"
			if changed {
				state = "stored"
			}
			slog.Debug("imported question set", "path", path, "question_set_id", rec.ID, "checksum", rec.Checksum)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tversion %d\t%s\n", rec.ID, state, rec.Version, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("redis-addr", "", "Redis address whose cache entries are refreshed")
}
