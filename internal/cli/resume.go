package cli

import (
	"bytes"
	"context"
	"path/filepath"

	"applytrack/internal/common"
	"applytrack/internal/services"
	"applytrack/internal/types"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Upload, fetch and optimize resumes",
}

var resumeUploadCmd = &cobra.Command{
	Use:   "upload <resume-file>",
	Short: "Upload a resume document for parsing",
	Long: `Upload a resume (PDF, Word or plain text) to the backend. The backend parses
it into summary, experience, skills and projects; an upload it cannot parse
is reported as an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}

		sess := commandSession(cmd)
		return runWithOutput(cmd, resumeUploadConfig, "resume upload", func(ctx context.Context) (types.Resume, error) {
			return sess.UploadResume(ctx, filepath.Base(args[0]), bytes.NewReader(data))
		})
	},
}

var resumeGetCmd = &cobra.Command{
	Use:   "get <resume-id>",
	Short: "Fetch a resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, resumeGetConfig, "resume get", func(ctx context.Context) (types.Resume, error) {
			return sess.SelectResume(ctx, args[0])
		})
	},
}

var resumeOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a resume for a job description",
	Long: `Ask the backend to rewrite a resume for a job description. The output lists
the optimized content together with every change and the keywords it adds.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, resumeOptimizeConfig, "resume optimize", func(ctx context.Context) (services.OptimizationResult, error) {
			return sess.Services().Resumes.Optimize(ctx, optimizeResumeID, optimizeJobID)
		})
	},
}

var (
	resumeUploadConfig   common.CommandConfig
	resumeGetConfig      common.CommandConfig
	resumeOptimizeConfig common.CommandConfig
	optimizeResumeID     string
	optimizeJobID        string
)

func init() {
	resumeOptimizeCmd.Flags().StringVar(&optimizeResumeID, "resume", "", "Id of the resume to optimize")
	resumeOptimizeCmd.Flags().StringVar(&optimizeJobID, "job", "", "Id of the job description to optimize for")
	_ = resumeOptimizeCmd.MarkFlagRequired("resume")
	_ = resumeOptimizeCmd.MarkFlagRequired("job")

	resumeCmd.AddCommand(addOutputFlags(resumeUploadCmd, &resumeUploadConfig))
	resumeCmd.AddCommand(addOutputFlags(resumeGetCmd, &resumeGetConfig))
	resumeCmd.AddCommand(addOutputFlags(resumeOptimizeCmd, &resumeOptimizeConfig))
}

// readDocument reads a file to upload, honoring app.maxFileSize
func readDocument(cmd *cobra.Command, filename string) ([]byte, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	return common.NewFileProcessor(logger, cfg.App.MaxFileSize).ReadDocument(filename)
}
