package cli

import (
	"context"

	"applytrack/internal/common"
	"applytrack/internal/errors"
	"applytrack/internal/types"

	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Analyze and fetch job descriptions",
}

var jobAnalyzeCmd = &cobra.Command{
	Use:   "analyze [posting-file]",
	Short: "Submit a job posting for analysis",
	Long: `Submit a job posting to the backend, which extracts the title, company,
required skills, keywords and technologies. The posting is read from a text
file, or fetched by the backend when --url is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobAnalyze,
}

var jobGetCmd = &cobra.Command{
	Use:   "get <job-description-id>",
	Short: "Fetch an analyzed job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, jobGetConfig, "job get", func(ctx context.Context) (types.JobDescription, error) {
			return sess.SelectJob(ctx, args[0])
		})
	},
}

var (
	jobAnalyzeConfig common.CommandConfig
	jobGetConfig     common.CommandConfig
	jobURL           string
)

func init() {
	jobAnalyzeCmd.Flags().StringVar(&jobURL, "url", "", "URL of the job posting, instead of a file")

	jobCmd.AddCommand(addOutputFlags(jobAnalyzeCmd, &jobAnalyzeConfig))
	jobCmd.AddCommand(addOutputFlags(jobGetCmd, &jobGetConfig))
}

func runJobAnalyze(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (jobURL == "") {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"provide either a posting file or --url", nil)
	}

	input, isURL := jobURL, true
	if len(args) == 1 {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		text, err := common.NewFileProcessor(logger, cfg.App.MaxFileSize).ReadText(args[0])
		if err != nil {
			return err
		}
		input, isURL = text, false
	}

	sess := commandSession(cmd)
	return runWithOutput(cmd, jobAnalyzeConfig, "job analyze", func(ctx context.Context) (types.JobDescription, error) {
		return sess.AnalyzeJob(ctx, input, isURL)
	})
}
