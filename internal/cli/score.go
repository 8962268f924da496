package cli

import (
	"context"

	"applytrack/internal/common"
	"applytrack/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Long: `Compute the ATS keyword score of a resume for a job description. The output
lists the matched, missing and suggested keywords.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, scoreConfig, "score", func(ctx context.Context) (types.ATSScore, error) {
			return sess.Services().ATS.Score(ctx, scoreResumeID, scoreJobID)
		})
	},
}

var (
	scoreConfig   common.CommandConfig
	scoreResumeID string
	scoreJobID    string
)

func init() {
	scoreCmd.Flags().StringVar(&scoreResumeID, "resume", "", "Id of the resume to score")
	scoreCmd.Flags().StringVar(&scoreJobID, "job", "", "Id of the job description to score against")
	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("job")

	addOutputFlags(scoreCmd, &scoreConfig)
}
