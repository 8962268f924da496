package cli

import (
	"context"

	"applytrack/internal/common"
	"applytrack/internal/session"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show application totals per status and the response rate",
	Long: `Fetch every application and summarize them: the total, the count per status,
the response rate (interviews and offers over all applications) and the most
recent applications.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, dashboardConfig, "dashboard", func(ctx context.Context) (session.Dashboard, error) {
			if _, err := sess.SyncApplications(ctx, "", session.StatusAll); err != nil {
				return session.Dashboard{}, err
			}
			return sess.Dashboard(), nil
		})
	},
}

var dashboardConfig common.CommandConfig

func init() {
	addOutputFlags(dashboardCmd, &dashboardConfig)
}
