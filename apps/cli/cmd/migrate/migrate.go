package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sqlassets "github.com/rshetty-99/ai-marketplace-sub008/database"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/persistence"
)

// Command applies the embedded schema DDL. Statements are idempotent
// (CREATE TABLE IF NOT EXISTS) so re-running is safe.
func Command() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the slug engine schema to the target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			for _, asset := range []string{sqlassets.SlugAssignmentsSQL, sqlassets.OwnerProfilesSQL} {
				for _, stmt := range strings.Split(asset, ";") {
					stmt = strings.TrimSpace(stmt)
					if stmt == "" {
						continue
					}
					if _, err := pool.Exec(ctx, stmt); err != nil {
						return fmt.Errorf("apply schema statement: %w", err)
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema migration complete.")
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	_ = c.MarkFlagRequired("database-url")

	return c
}
