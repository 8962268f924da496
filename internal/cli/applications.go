package cli

import (
	"context"
	"fmt"
	"strings"

	"applytrack/internal/common"
	"applytrack/internal/errors"
	"applytrack/internal/session"
	"applytrack/internal/types"

	"github.com/spf13/cobra"
)

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "List and manage job applications",
}

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	Long: `List the applications known to the backend. --search matches company or role,
case-insensitively; --status keeps one status (use "all" for every status).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateStatusFilter(listStatus); err != nil {
			return err
		}

		sess := commandSession(cmd)
		return runWithOutput(cmd, applicationsListConfig, "applications list", func(ctx context.Context) ([]types.JobApplication, error) {
			if _, err := sess.SyncApplications(ctx, listSearch, listStatus); err != nil {
				return nil, err
			}
			return sess.Applications(listSearch, listStatus), nil
		})
	},
}

var applicationsGetCmd = &cobra.Command{
	Use:   "get <application-id>",
	Short: "Show an application with its notes and timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, applicationsGetConfig, "applications get", func(ctx context.Context) (types.JobApplication, error) {
			return sess.SelectApplication(ctx, args[0])
		})
	},
}

var applicationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an application from a job description and a resume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, applicationsCreateConfig, "applications create", func(ctx context.Context) (types.JobApplication, error) {
			return sess.CreateApplication(ctx, createJobID, createResumeID)
		})
	},
}

var applicationsStatusCmd = &cobra.Command{
	Use:   "status <application-id> <status>",
	Short: "Change the status of an application",
	Long: fmt.Sprintf(`Change the status of an application and record the change on its timeline.
Any status may follow any other. Statuses: %s.`, statusNames()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := types.ParseApplicationStatus(args[1])
		if !status.Valid() {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown status %q, expected one of %s", args[1], statusNames()), nil)
		}

		sess := commandSession(cmd)
		return runWithOutput(cmd, applicationsStatusConfig, "applications status", func(ctx context.Context) (types.JobApplication, error) {
			return sess.ChangeStatus(ctx, args[0], status)
		})
	},
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(types.ApplicationStatuses))
		for _, s := range types.ApplicationStatuses {
			names = append(names, string(s))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
}

var applicationsNoteCmd = &cobra.Command{
	Use:   "note <application-id> <note>...",
	Short: "Add a note to an application",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note := strings.Join(args[1:], " ")

		sess := commandSession(cmd)
		return runWithOutput(cmd, applicationsNoteConfig, "applications note", func(ctx context.Context) (types.JobApplication, error) {
			return sess.AddNote(ctx, args[0], note)
		})
	},
}

var (
	applicationsListConfig   common.CommandConfig
	applicationsGetConfig    common.CommandConfig
	applicationsCreateConfig common.CommandConfig
	applicationsStatusConfig common.CommandConfig
	applicationsNoteConfig   common.CommandConfig

	listSearch     string
	listStatus     string
	createJobID    string
	createResumeID string
)

func init() {
	applicationsListCmd.Flags().StringVar(&listSearch, "search", "", "Match company or role")
	applicationsListCmd.Flags().StringVar(&listStatus, "status", session.StatusAll, "Only show applications with this status")

	applicationsCreateCmd.Flags().StringVar(&createJobID, "job", "", "Id of the job description")
	applicationsCreateCmd.Flags().StringVar(&createResumeID, "resume", "", "Id of the resume")
	_ = applicationsCreateCmd.MarkFlagRequired("job")
	_ = applicationsCreateCmd.MarkFlagRequired("resume")

	applicationsCmd.AddCommand(addOutputFlags(applicationsListCmd, &applicationsListConfig))
	applicationsCmd.AddCommand(addOutputFlags(applicationsGetCmd, &applicationsGetConfig))
	applicationsCmd.AddCommand(addOutputFlags(applicationsCreateCmd, &applicationsCreateConfig))
	applicationsCmd.AddCommand(addOutputFlags(applicationsStatusCmd, &applicationsStatusConfig))
	applicationsCmd.AddCommand(addOutputFlags(applicationsNoteCmd, &applicationsNoteConfig))
}

func statusNames() string {
	names := make([]string, 0, len(types.ApplicationStatuses))
	for _, s := range types.ApplicationStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// validateStatusFilter accepts "all", an empty filter or a known status
func validateStatusFilter(status string) error {
	if status == "" || status == session.StatusAll || types.ParseApplicationStatus(status).Valid() {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("unknown status %q, expected all or one of %s", status, statusNames()), nil)
}
