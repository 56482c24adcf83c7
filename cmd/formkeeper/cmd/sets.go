package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/types"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Inspect and remove stored question sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored question sets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, queries, err := openDatabase(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer database.Close()

		recs, err := db.NewQuestionSetStore(queries).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUESTION SET\tVERSION\tCHECKSUM\tUPDATED AT")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%d\t%.12s\t%s\n", r.ID, r.Version, r.Checksum, r.UpdatedAt.UTC().Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete stored question sets and evict them from the cache",
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

		for _, id := range args {
			if err := sets.Delete(ctx, types.QuestionSetID(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	setsDeleteCmd.Flags().String("redis-addr", "", "Redis address whose cache entries are evicted")
	setsCmd.AddCommand(setsListCmd, setsDeleteCmd)
	rootCmd.AddCommand(setsCmd)
}
